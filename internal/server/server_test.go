package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leedsrising/pdf-to-text/internal/detect"
	"github.com/leedsrising/pdf-to-text/internal/rehydrate"
	"github.com/leedsrising/pdf-to-text/internal/sanitize"
	"github.com/leedsrising/pdf-to-text/internal/server"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	allow := detect.NewAllowList(nil)
	patternDet, err := detect.NewPatternDetector(allow)
	require.NoError(t, err)
	engine, err := sanitize.NewEngine([]detect.Detector{patternDet})
	require.NoError(t, err)

	rehydrators := map[string]rehydrate.Rehydrator{
		rehydrate.StrategyLocal: rehydrate.NewLocalSeeded(1),
	}
	return server.New("127.0.0.1:0", engine, rehydrators, nil).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestSanitizeEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/v1/sanitize", server.SanitizeRequest{
		Text: "reach ops@fund.io at Suite 400",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.SanitizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "reach [EMAIL] at [UNIT]", resp.Text)
	require.Len(t, resp.Spans, 2)
	assert.Equal(t, "EMAIL", resp.Spans[0].Label)
	assert.Equal(t, "pattern", resp.Spans[0].Source)
	assert.Equal(t, map[string]int{"EMAIL": 1, "UNIT": 1}, resp.ByLabel)
	assert.Equal(t, map[string]int{"pattern": 2}, resp.BySource)
}

func TestSanitizeEndpointRejectsEmptyText(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/v1/sanitize", server.SanitizeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/sanitize", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRehydrateEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/v1/rehydrate", server.RehydrateRequest{
		Text: "sold to [ENTITY] for [AMOUNT]",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.RehydrateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotContains(t, resp.Text, "[ENTITY]")
	assert.NotContains(t, resp.Text, "[AMOUNT]")
	assert.True(t, strings.HasPrefix(resp.Text, "sold to "))
}

func TestRehydrateEndpointUnknownStrategy(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/v1/rehydrate", server.RehydrateRequest{
		Text:     "[ENTITY]",
		Strategy: "telepathic",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown strategy")
}

func TestRunsEndpointWithoutStore(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, "/v1/runs", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestHandler(t)

	// A caller-supplied correlation ID is echoed back.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	// Otherwise one is assigned.
	rec = doJSON(t, handler, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
