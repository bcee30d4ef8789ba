package apimodels

import "encoding/json"

// AnalyzeResponse is the success body of POST /analyze.
// Analysis holds the model output exactly as decoded; it is not re-encoded
// through AnalysisResult so fields the model added or omitted survive.
type AnalyzeResponse struct {
	Analysis json.RawMessage `json:"analysis"`
}

// ErrorPayload is returned instead of AnalyzeResponse when a request fails.
type ErrorPayload struct {
	Error string `json:"error"`

	// Underlying failure message, for diagnosis
	Details string `json:"details,omitempty"`

	// Model output that could not be decoded. Set, possibly to "", only
	// for parse failures.
	RawResponse *string `json:"rawResponse,omitempty"`
}

type FormsResponse struct {
	Forms []Form `json:"forms"`
}

type Form struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
