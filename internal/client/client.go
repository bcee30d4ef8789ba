package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sozercan/poetry-assistant/apimodels"
)

const genericError = "An error occurred while analyzing the poem."

// ErrNoAnalysis is returned when the server answered 2xx without an analysis.
var ErrNoAnalysis = errors.New("no analysis data received from the server")

// APIError is a non-2xx answer from the analysis service.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Detail() string { return e.Details }

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze submits one poem and decodes the critique.
func (c *Client) Analyze(ctx context.Context, poem, form string) (*apimodels.AnalysisResult, error) {
	body, err := json.Marshal(apimodels.AnalysisRequest{Poem: poem, Form: form})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: genericError}
		var payload apimodels.ErrorPayload
		if json.Unmarshal(data, &payload) == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			}
			apiErr.Details = payload.Details
		}
		return nil, apiErr
	}

	var envelope apimodels.AnalyzeResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return DecodeAnalysis(envelope.Analysis)
}

// DecodeAnalysis types the analysis field of a successful response. A
// missing or null analysis is ErrNoAnalysis.
func DecodeAnalysis(raw json.RawMessage) (*apimodels.AnalysisResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrNoAnalysis
	}

	var result apimodels.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unexpected analysis format: %w", err)
	}
	return &result, nil
}
