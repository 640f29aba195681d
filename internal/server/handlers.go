package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/leedsrising/pdf-to-text/internal/evidence"
	"github.com/leedsrising/pdf-to-text/internal/rehydrate"
	"github.com/leedsrising/pdf-to-text/internal/sanitize"
	"github.com/leedsrising/pdf-to-text/internal/span"
)

// SanitizeRequest is the body of POST /v1/sanitize.
type SanitizeRequest struct {
	Text     string `json:"text"`
	Document string `json:"document,omitempty"` // optional name for the audit trail
}

// SpanInfo is one resolved span in a sanitize response.
type SpanInfo struct {
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Label      string   `json:"label"`
	Source     string   `json:"source"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// SanitizeResponse is the body returned by POST /v1/sanitize.
type SanitizeResponse struct {
	Text     string         `json:"text"`
	Spans    []SpanInfo     `json:"spans"`
	ByLabel  map[string]int `json:"by_label"`
	BySource map[string]int `json:"by_source"`
}

// RehydrateRequest is the body of POST /v1/rehydrate.
type RehydrateRequest struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy,omitempty"` // defaults to "local"
	Document string `json:"document,omitempty"`
}

// RehydrateResponse is the body returned by POST /v1/rehydrate.
type RehydrateResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req SanitizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	res, err := s.engine.Sanitize(r.Context(), req.Text)
	if err != nil {
		log.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("sanitize failed")
		writeError(w, http.StatusInternalServerError, "sanitization failed")
		return
	}

	s.record(r, req.Document, evidence.OpSanitize, res)

	resp := SanitizeResponse{
		Text:     res.Text,
		Spans:    make([]SpanInfo, 0, len(res.Spans)),
		ByLabel:  stringKeys(res.ByLabel),
		BySource: sourceKeys(res.BySource),
	}
	for _, sp := range res.Spans {
		resp.Spans = append(resp.Spans, SpanInfo{
			Start:      sp.Start,
			End:        sp.End,
			Label:      string(sp.Label),
			Source:     string(sp.Source),
			Confidence: sp.Confidence,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRehydrate(w http.ResponseWriter, r *http.Request) {
	var req RehydrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = rehydrate.StrategyLocal
	}
	hydrator, ok := s.rehydrators[strategy]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown strategy "+strategy)
		return
	}

	text, err := hydrator.Rehydrate(r.Context(), req.Text)
	if err != nil {
		log.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("rehydrate failed")
		writeError(w, http.StatusInternalServerError, "rehydration failed")
		return
	}
	writeJSON(w, http.StatusOK, RehydrateResponse{Text: text})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "audit trail disabled")
		return
	}
	records, err := s.store.List(r.Context(), 50)
	if err != nil {
		log.Error().Err(err).Msg("listing runs failed")
		writeError(w, http.StatusInternalServerError, "listing runs failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// record inserts an audit entry; failures are logged, never surfaced to the
// caller, since the document result is already computed.
func (s *Server) record(r *http.Request, document, op string, res *sanitize.Result) {
	if s.store == nil {
		return
	}
	if document == "" {
		document = "(inline)"
	}
	rec := &evidence.Record{
		Document:   document,
		Operation:  op,
		SpanCount:  len(res.Spans),
		ByLabel:    stringKeys(res.ByLabel),
		BySource:   sourceKeys(res.BySource),
		DurationMS: res.Duration.Milliseconds(),
	}
	if err := s.store.Insert(r.Context(), rec); err != nil {
		log.Warn().Err(err).Msg("recording run evidence failed")
	}
}

func stringKeys(m map[span.Label]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func sourceKeys(m map[span.Source]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
