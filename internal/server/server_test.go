package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/poetry-assistant/apimodels"
	"github.com/sozercan/poetry-assistant/internal/analyzer"
	"github.com/sozercan/poetry-assistant/internal/client"
	"github.com/sozercan/poetry-assistant/internal/config"
	"github.com/sozercan/poetry-assistant/internal/llm"
	"github.com/sozercan/poetry-assistant/internal/ratelimit"
)

const validAnalysis = `{"overallRating":"8/10 - strong imagery","strengths":["Vivid","Concise"],"weaknesses":["Flat ending","Cliche"],"technicalAnalysis":{"rhythm":"7/10","wordChoice":"8/10","imagery":"9/10","structure":"6/10"},"improvements":["One","Two","Three"],"finalVerdict":"Keep writing.","extra":"kept"}`

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         "0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
	}
}

func newTestServer(provider llm.Provider, opts ...Option) *Server {
	return New(testConfig(), analyzer.New(provider), opts...)
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeSuccess(t *testing.T) {
	provider := llm.NewStatic(validAnalysis)
	s := newTestServer(provider)

	rec := postJSON(t, s.Handler(), `{"poem": "roses are red", "form": "Haiku"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.JSONEq(t, `{"analysis": `+validAnalysis+`}`, rec.Body.String())

	require.Len(t, provider.Prompts(), 1)
	assert.Contains(t, provider.Prompts()[0], "roses are red")
	assert.Contains(t, provider.Prompts()[0], "Haiku")
}

func TestAnalyzeValidation(t *testing.T) {
	for _, body := range []string{
		`{"form": "Haiku"}`,
		`{"poem": "", "form": "Haiku"}`,
		`{"poem": "roses are red"}`,
		`{"poem": "roses are red", "form": ""}`,
		`{}`,
	} {
		provider := llm.NewStatic(validAnalysis)
		rec := postJSON(t, newTestServer(provider).Handler(), body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error": "Poem and form are required"}`, rec.Body.String())
		assert.Equal(t, 0, provider.Calls(), body)
	}
}

func TestAnalyzeParseFailure(t *testing.T) {
	completion := `Sure! Here's the analysis: {"overallRating": "8/10"}`
	rec := postJSON(t, newTestServer(llm.NewStatic(completion)).Handler(), `{"poem": "p", "form": "Haiku"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var payload apimodels.ErrorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Failed to parse AI response", payload.Error)
	require.NotNil(t, payload.RawResponse)
	assert.Equal(t, completion, *payload.RawResponse)
	assert.Empty(t, payload.Details)
}

func TestAnalyzeEmptyCompletionKeepsRawResponse(t *testing.T) {
	rec := postJSON(t, newTestServer(llm.NewStatic("")).Handler(), `{"poem": "p", "form": "Haiku"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to parse AI response", body["error"])
	raw, ok := body["rawResponse"]
	require.True(t, ok, "rawResponse must be present: %s", rec.Body.String())
	assert.Equal(t, "", raw)
}

func TestAnalyzeProviderFailure(t *testing.T) {
	provider := llm.NewFailing(errors.New("401 Unauthorized: invalid api key"))
	rec := postJSON(t, newTestServer(provider).Handler(), `{"poem": "p", "form": "Haiku"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "An error occurred while analyzing the poem.", "details": "401 Unauthorized: invalid api key"}`, rec.Body.String())
}

func TestAnalyzeMalformedBody(t *testing.T) {
	provider := llm.NewStatic(validAnalysis)
	rec := postJSON(t, newTestServer(provider).Handler(), `{"poem": `)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var payload apimodels.ErrorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "An error occurred while analyzing the poem.", payload.Error)
	assert.NotEmpty(t, payload.Details)
	assert.Equal(t, 0, provider.Calls())
}

type panicProvider struct{}

func (panicProvider) Name() string { return "panic" }

func (panicProvider) Generate(context.Context, string, ...llm.Option) (*llm.Response, error) {
	panic("provider blew up")
}

func TestAnalyzePanicIsGenericFailure(t *testing.T) {
	rec := postJSON(t, newTestServer(panicProvider{}).Handler(), `{"poem": "p", "form": "Haiku"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error": "An error occurred while analyzing the poem.", "details": "provider blew up"}`, rec.Body.String())
}

func TestRequestIDPassthrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestServer(llm.NewStatic("")).Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestForms(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(llm.NewStatic("")).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp apimodels.FormsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Forms, 4)
	assert.Equal(t, "Free Verse", resp.Forms[0].Name)
}

func TestUnknownRouteIsJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(llm.NewStatic("")).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	newTestServer(llm.NewStatic("")).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(llm.NewStatic(validAnalysis), WithRateLimiter(ratelimit.NewMemory(1, 1)))

	rec := postJSON(t, s.Handler(), `{"poem": "p", "form": "Haiku"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, s.Handler(), `{"poem": "p", "form": "Haiku"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error": "Too many requests, please try again later."}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func postJSONFrom(t *testing.T, h http.Handler, remoteAddr, realIP string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"poem": "p", "form": "Haiku"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Real-IP", realIP)
	req.Header.Set("X-Forwarded-For", realIP)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitIgnoresForwardingHeadersByDefault(t *testing.T) {
	s := newTestServer(llm.NewStatic(validAnalysis), WithRateLimiter(ratelimit.NewMemory(1, 1)))

	allowed := 0
	for i := 0; i < 20; i++ {
		rec := postJSONFrom(t, s.Handler(), "192.0.2.1:1234", fmt.Sprintf("203.0.113.%d", i+1))
		if rec.Code == http.StatusOK {
			allowed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestRateLimitTrustsForwardingHeadersWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Server.TrustProxyHeaders = true
	s := New(cfg, analyzer.New(llm.NewStatic(validAnalysis)), WithRateLimiter(ratelimit.NewMemory(1, 1)))

	// one proxy, two clients behind it
	assert.Equal(t, http.StatusOK, postJSONFrom(t, s.Handler(), "10.0.0.1:1234", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, postJSONFrom(t, s.Handler(), "10.0.0.1:1234", "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, postJSONFrom(t, s.Handler(), "10.0.0.1:1234", "203.0.113.1").Code)
}

func postForm(t *testing.T, h http.Handler, poem, form string) *httptest.ResponseRecorder {
	t.Helper()
	values := url.Values{"poem": {poem}, "form": {form}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(llm.NewStatic("")).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Free Verse" selected>`)
	assert.Contains(t, body, "Haiku - 3 lines with 5-7-5 syllable pattern")
	assert.Contains(t, body, `<button id="submit" type="submit" disabled>`)
}

// Scenario: a valid critique renders the rating bar and all six sections.
func TestSubmitPageSuccess(t *testing.T) {
	rec := postForm(t, newTestServer(llm.NewStatic(validAnalysis)).Handler(), "roses are red", "Haiku")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<progress max="100" value="80">`)
	for _, id := range []string{"overall-rating", "strengths", "weaknesses", "technical-analysis", "improvements", "final-verdict"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, `<option value="Haiku" selected>`)
	assert.NotContains(t, body, `id="alert"`)
}

// Scenario: a blank poem is never sent.
func TestSubmitPageBlankPoem(t *testing.T) {
	provider := llm.NewStatic(validAnalysis)
	rec := postForm(t, newTestServer(provider).Handler(), "   ", "Haiku")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, provider.Calls())
	assert.NotContains(t, rec.Body.String(), `id="analysis"`)
}

// Scenario: prose around the JSON surfaces the parse alert and keeps the poem.
func TestSubmitPageParseFailure(t *testing.T) {
	completion := `Sure! Here's the analysis: {"overallRating": "8/10"}`
	rec := postForm(t, newTestServer(llm.NewStatic(completion)).Handler(), "roses are red", "Haiku")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Failed to parse AI response")
	assert.Contains(t, body, ">roses are red</textarea>")
	assert.NotContains(t, body, "Sure! Here")
}

func TestSubmitPageWrongShape(t *testing.T) {
	rec := postForm(t, newTestServer(llm.NewStatic(`[1, 2, 3]`)).Handler(), "roses are red", "Haiku")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="alert"`)
	assert.NotContains(t, rec.Body.String(), `id="analysis"`)
}

func TestClientAgainstServer(t *testing.T) {
	ts := httptest.NewServer(newTestServer(llm.NewStatic(validAnalysis)).Handler())
	defer ts.Close()

	session := client.NewSession(client.New(ts.URL), "Haiku")
	session.SetPoem("roses are red")
	require.NoError(t, session.Submit(context.Background()))

	assert.Equal(t, client.Success, session.State())
	assert.Equal(t, "8/10 - strong imagery", session.Result().OverallRating)
	assert.Len(t, session.Result().Improvements, 3)
}

func TestClientAgainstServerParseFailure(t *testing.T) {
	ts := httptest.NewServer(newTestServer(llm.NewStatic("not json")).Handler())
	defer ts.Close()

	session := client.NewSession(client.New(ts.URL), "Haiku")
	session.SetPoem("roses are red")
	err := session.Submit(context.Background())

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to parse AI response", apiErr.Message)
	assert.Equal(t, client.Failure, session.State())
	assert.Equal(t, "roses are red", session.Poem())
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(llm.NewStatic(""))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
