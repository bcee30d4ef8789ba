package apimodels

type AnalysisRequest struct {
	// Poem is the text to critique
	Poem string `json:"poem"`

	// Form is the poetic form label the poem is written in (e.g. "Haiku")
	Form string `json:"form"`
}
