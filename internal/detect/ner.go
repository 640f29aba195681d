package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leedsrising/pdf-to-text/internal/span"
)

// ErrNERUnavailable is returned by Ping when the recognizer service cannot
// be reached. Engine construction treats it as fatal: the pipeline fails
// fast instead of running without statistical recognition.
var ErrNERUnavailable = errors.New("ner service unavailable")

// TimeoutNERCall bounds a single recognition round-trip.
const TimeoutNERCall = 30 * time.Second

// NEREntity is one typed span returned by the external recognizer.
type NEREntity struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score,omitempty"`
}

// NERClient is a thin HTTP adapter for a statistical NER sidecar (a spaCy
// model served over HTTP). The core only depends on this wire contract.
type NERClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNERClient creates a client for the recognizer service at baseURL.
// An empty baseURL defaults to the local sidecar port.
func NewNERClient(baseURL string) *NERClient {
	if baseURL == "" {
		baseURL = "http://localhost:8090"
	}
	return &NERClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

type nerRequest struct {
	Text string `json:"text"`
}

type nerResponse struct {
	Entities []NEREntity `json:"entities"`
}

// Recognize submits document text and returns the typed entity spans.
func (c *NERClient) Recognize(ctx context.Context, text string) ([]NEREntity, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutNERCall)
	defer cancel()

	body, err := json.Marshal(nerRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshalling ner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/entities", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating ner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ner api call: unexpected status %d", resp.StatusCode)
	}

	var apiResp nerResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding ner response: %w", err)
	}
	return apiResp.Entities, nil
}

// Ping verifies the recognizer service is reachable and its model loaded.
func (c *NERClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("creating ner health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNERUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrNERUnavailable, resp.StatusCode)
	}
	return nil
}

// nerLabelFamilies maps recognizer label families onto placeholder labels.
// Labels outside the map are dropped.
var nerLabelFamilies = map[string]span.Label{
	"PERSON":      span.LabelEntity,
	"ORG":         span.LabelEntity,
	"GPE":         span.LabelEntity,
	"FAC":         span.LabelEntity,
	"LOC":         span.LabelEntity,
	"PRODUCT":     span.LabelEntity,
	"EVENT":       span.LabelEntity,
	"WORK_OF_ART": span.LabelEntity,
	"LAW":         span.LabelEntity,
	"LANGUAGE":    span.LabelEntity,
	"NORP":        span.LabelEntity,

	"MONEY":    span.LabelNumber,
	"CARDINAL": span.LabelNumber,
	"QUANTITY": span.LabelNumber,
	"PERCENT":  span.LabelNumber,

	"DATE": span.LabelDate,
	"TIME": span.LabelDate,
}

// NERDetector adapts the recognizer service to the Detector contract.
type NERDetector struct {
	client *NERClient
	allow  *AllowList
}

// NewNERDetector wraps a recognizer client.
func NewNERDetector(client *NERClient, allow *AllowList) *NERDetector {
	return &NERDetector{client: client, allow: allow}
}

// Source identifies recognizer candidates.
func (d *NERDetector) Source() span.Source { return span.SourceNER }

// Detect converts recognizer entities into candidates by label family.
// Allow-listed entities are dropped, not converted.
func (d *NERDetector) Detect(ctx context.Context, text string) ([]span.Candidate, error) {
	ctx, otelSpan := tracer.Start(ctx, "detect.ner")
	defer otelSpan.End()

	entities, err := d.client.Recognize(ctx, text)
	if err != nil {
		return nil, err
	}

	var out []span.Candidate
	for _, ent := range entities {
		label, ok := nerLabelFamilies[ent.Label]
		if !ok {
			continue
		}
		if d.allow.Contains(ent.Text) {
			continue
		}
		c := span.Candidate{
			Start:  ent.Start,
			End:    ent.End,
			Label:  label,
			Source: span.SourceNER,
		}
		if ent.Score > 0 {
			c.Confidence = span.Conf(ent.Score)
		}
		out = append(out, c)
	}

	otelSpan.SetAttributes(
		attribute.Int("detect.entities", len(entities)),
		attribute.Int("detect.candidates", len(out)),
	)
	return out, nil
}
