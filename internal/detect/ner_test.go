package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leedsrising/pdf-to-text/internal/span"
)

// newNERServer serves a canned entity list on the recognizer wire contract.
func newNERServer(t *testing.T, entities []NEREntity) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusOK)
		case "/v1/entities":
			var req nerRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(nerResponse{Entities: entities})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNERClientPing(t *testing.T) {
	srv := newNERServer(t, nil)
	client := NewNERClient(srv.URL)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNERClientPingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewNERClient(srv.URL)
	err := client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrNERUnavailable)
}

func TestNERClientPingUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := NewNERClient(srv.URL)
	err := client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrNERUnavailable)
}

func TestNERDetectorLabelFamilies(t *testing.T) {
	text := "John Smith paid $40 million on March 3, 2021 for the third time"
	srv := newNERServer(t, []NEREntity{
		{Text: "John Smith", Label: "PERSON", Start: 0, End: 10, Score: 0.97},
		{Text: "$40 million", Label: "MONEY", Start: 16, End: 27},
		{Text: "March 3, 2021", Label: "DATE", Start: 31, End: 44},
		{Text: "third", Label: "ORDINAL", Start: 53, End: 58},
	})

	det := NewNERDetector(NewNERClient(srv.URL), NewAllowList(nil))
	got, err := det.Detect(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, got, 3)

	assert.Equal(t, span.Candidate{
		Start: 0, End: 10, Label: span.LabelEntity,
		Source: span.SourceNER, Confidence: span.Conf(0.97),
	}, got[0])

	assert.Equal(t, span.LabelNumber, got[1].Label)
	assert.Nil(t, got[1].Confidence)

	assert.Equal(t, span.LabelDate, got[2].Label)

	// The ORDINAL family is outside the mapping and never surfaces.
	for _, c := range got {
		assert.NotEqual(t, 53, c.Start)
	}
}

func TestNERDetectorAllowList(t *testing.T) {
	srv := newNERServer(t, []NEREntity{
		{Text: "Mavik", Label: "ORG", Start: 12, End: 17, Score: 0.99},
		{Text: "Acme", Label: "ORG", Start: 22, End: 26, Score: 0.99},
	})

	det := NewNERDetector(NewNERClient(srv.URL), NewAllowList([]string{"Mavik"}))
	got, err := det.Detect(context.Background(), "prepared by Mavik for Acme")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 22, got[0].Start)
}

func TestNERDetectorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	det := NewNERDetector(NewNERClient(srv.URL), NewAllowList(nil))
	_, err := det.Detect(context.Background(), "some text")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestNERClientDefaultBaseURL(t *testing.T) {
	client := NewNERClient("")
	assert.Equal(t, "http://localhost:8090", client.baseURL)
}
