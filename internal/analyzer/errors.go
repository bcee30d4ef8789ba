package analyzer

import "fmt"

// ValidationError means the caller sent unusable input. No model call was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ModelInvocationError means the provider call itself failed.
type ModelInvocationError struct {
	Provider string
	Err      error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// ResponseParseError means the model answered but the answer is not a usable
// JSON document. RawResponse is the completion exactly as received.
type ResponseParseError struct {
	RawResponse string
	Details     string
	Err         error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }
