package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/novel-lexicon/internal/llm"
	"github.com/jonathan/novel-lexicon/internal/pipeline"
	"github.com/jonathan/novel-lexicon/internal/pipeline/stages"
	"github.com/jonathan/novel-lexicon/internal/rendering"
	"github.com/jonathan/novel-lexicon/internal/types"
)

// maxRequestBytes bounds the analyze request body.
const maxRequestBytes = 64 << 10

// decodeRequest reads and validates an AnalyzeRequest.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*types.AnalyzeRequest, error) {
	var req types.AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return nil, &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		return nil, &ErrValidation{Field: "request", Message: describeValidation(err)}
	}
	return &req, nil
}

// runOptions merges request overrides onto the configured defaults.
func (s *Server) runOptions(req *types.AnalyzeRequest) pipeline.RunOptions {
	opts := pipeline.OptionsFromConfig(s.cfg)
	opts.Title = req.Title
	opts.Logger = s.log
	if req.WebResearch != nil {
		opts.WebResearch = *req.WebResearch
	}
	if req.Elaborate {
		opts.Elaborate = true
	}
	if req.SentenceCount > 0 {
		opts.SentenceCount = req.SentenceCount
	}
	if req.VocabularyCount > 0 {
		opts.VocabularyCount = req.VocabularyCount
	}
	return opts
}

// analyze runs one analysis. A request key takes precedence over the
// configured one.
func (s *Server) analyze(ctx context.Context, req *types.AnalyzeRequest, onProgress pipeline.ProgressCallback) (*types.AnalysisBundle, error) {
	opts := s.runOptions(req)
	opts.OnProgress = onProgress

	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(s.cfg.Gemini.APIKey)
	}
	opts.CredentialPresent = apiKey != ""

	var completer llm.Completer
	if opts.CredentialPresent {
		c, release, err := s.newCompleter(ctx, apiKey)
		if err != nil {
			return nil, &ErrCompleter{Cause: err}
		}
		defer release()
		completer = c
	}

	return pipeline.Run(ctx, completer, opts)
}

// handleAnalyze runs an analysis and returns the bundle.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	bundle, err := s.analyze(r.Context(), req, nil)
	if err != nil {
		s.log.Warn("analysis rejected", "error", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, bundle)
}

// handleAnalyzeStream runs an analysis and streams progress as SSE.
// Request errors are reported as plain JSON before the stream opens.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	bundle, err := s.analyze(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventProgress, event); err != nil {
			s.log.Debug("failed to write progress event", "error", err)
		}
	})
	if err != nil {
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}

	if err := sse.WriteEvent(EventBundle, bundle); err != nil {
		s.log.Warn("failed to write bundle event", "run_id", bundle.RunID, "error", err)
		return
	}

	status := "completed"
	if len(bundle.StageErrors) > 0 {
		status = "partial"
	}
	sse.WriteComplete(bundle.RunID, status)
}

// handleVocabularyCSV runs an analysis and returns only the vocabulary table.
func (s *Server) handleVocabularyCSV(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	bundle, err := s.analyze(r.Context(), req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	body, err := rendering.VocabularyCSV(bundle.Vocabulary)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vocabulary.csv"`)
	w.Header().Set("X-Run-ID", bundle.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		s.log.Warn("failed to write CSV response", "error", err)
	}
}

// handleStages lists the pipeline stages in execution order.
func (s *Server) handleStages(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, stages.Ordered())
}
