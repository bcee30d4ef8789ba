package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sozercan/poetry-assistant/apimodels"
	"github.com/sozercan/poetry-assistant/internal/analyzer"
	"github.com/sozercan/poetry-assistant/internal/client"
	"github.com/sozercan/poetry-assistant/internal/forms"
	"github.com/sozercan/poetry-assistant/internal/render"
)

const (
	msgGenericFailure = "An error occurred while analyzing the poem."
	msgParseFailure   = "Failed to parse AI response"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	defer r.Body.Close()

	var req apimodels.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Invalid analysis request body", "error", err, "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, apimodels.ErrorPayload{
			Error:   msgGenericFailure,
			Details: err.Error(),
		})
		return
	}

	slog.Debug("Received analysis request", "form", req.Form, "request_id", RequestID(r.Context()))

	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		status, payload := errorResponse(err)
		writeJSON(w, status, payload)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// errorResponse maps an analyzer failure to its HTTP status and body.
func errorResponse(err error) (int, apimodels.ErrorPayload) {
	var (
		validationErr *analyzer.ValidationError
		parseErr      *analyzer.ResponseParseError
		modelErr      *analyzer.ModelInvocationError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, apimodels.ErrorPayload{Error: validationErr.Message}
	case errors.As(err, &parseErr):
		return http.StatusInternalServerError, apimodels.ErrorPayload{
			Error:       msgParseFailure,
			Details:     parseErr.Details,
			RawResponse: &parseErr.RawResponse,
		}
	case errors.As(err, &modelErr):
		return http.StatusInternalServerError, apimodels.ErrorPayload{
			Error:   msgGenericFailure,
			Details: modelErr.Err.Error(),
		}
	default:
		slog.Error("Analysis request failed", "error", err)
		return http.StatusInternalServerError, apimodels.ErrorPayload{
			Error:   msgGenericFailure,
			Details: err.Error(),
		}
	}
}

func (s *Server) handleForms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apimodels.FormsResponse{Forms: forms.All()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writePage(w, http.StatusOK, render.Page{SelectedForm: forms.Default()})
}

// handleSubmit is the no-JavaScript path of the web UI: it analyzes the
// posted form in-process and renders the outcome.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := r.ParseForm(); err != nil {
		alert := render.Alert{Message: msgGenericFailure, Details: err.Error()}
		writePage(w, http.StatusBadRequest, render.Page{SelectedForm: forms.Default(), Alert: &alert})
		return
	}

	page := render.Page{
		Poem:         r.PostFormValue("poem"),
		SelectedForm: r.PostFormValue("form"),
	}
	if page.SelectedForm == "" {
		page.SelectedForm = forms.Default()
	}

	// the submit control is disabled for a blank poem; nothing to send
	if strings.TrimSpace(page.Poem) == "" {
		writePage(w, http.StatusOK, page)
		return
	}

	resp, err := s.analyzer.Analyze(r.Context(), apimodels.AnalysisRequest{Poem: page.Poem, Form: page.SelectedForm})
	if err != nil {
		status, payload := errorResponse(err)
		alert := render.AlertFromPayload(payload)
		page.Alert = &alert
		writePage(w, status, page)
		return
	}

	result, err := client.DecodeAnalysis(resp.Analysis)
	if err != nil {
		alert := render.AlertFromError(err)
		page.Alert = &alert
		writePage(w, http.StatusInternalServerError, page)
		return
	}

	report := render.NewReport(*result)
	page.Report = &report
	writePage(w, http.StatusOK, page)
}

func writePageLimited(w http.ResponseWriter, r *http.Request) {
	alert := render.Alert{Message: msgTooManyRequest}
	writePage(w, http.StatusTooManyRequests, render.Page{
		Poem:         r.PostFormValue("poem"),
		SelectedForm: r.PostFormValue("form"),
		Alert:        &alert,
	})
}

func writePage(w http.ResponseWriter, status int, page render.Page) {
	page.Forms = forms.All()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := render.WriteHTML(w, page); err != nil {
		slog.Error("Failed to render page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
