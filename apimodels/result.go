package apimodels

// AnalysisResult is the critique shape the model is asked to produce.
// Rating fields are free text expected to contain a 1-10 score.
type AnalysisResult struct {
	OverallRating     string            `json:"overallRating"`
	Strengths         []string          `json:"strengths"`
	Weaknesses        []string          `json:"weaknesses"`
	TechnicalAnalysis TechnicalAnalysis `json:"technicalAnalysis"`
	Improvements      []string          `json:"improvements"`
	FinalVerdict      string            `json:"finalVerdict"`
}

type TechnicalAnalysis struct {
	Rhythm     string `json:"rhythm"`
	WordChoice string `json:"wordChoice"`
	Imagery    string `json:"imagery"`
	Structure  string `json:"structure"`
}
