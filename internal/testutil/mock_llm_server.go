package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// OpenAICompatibleResponse is the minimal chat completions response for tests.
type OpenAICompatibleResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingDatum struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingsResponse struct {
	Object string           `json:"object"`
	Model  string           `json:"model"`
	Data   []embeddingDatum `json:"data"`
}

// NewOpenAICompatibleServer starts an httptest.Server speaking the minimal
// OpenAI API surface the pipeline uses: POST /v1/chat/completions returns a
// single assistant message with the given content and usage, and
// POST /v1/embeddings returns one deterministic vector per input, listed in
// reverse order with correct indices so clients must reassemble by index.
// Caller must call server.Close() or register t.Cleanup(server.Close).
func NewOpenAICompatibleServer(content string, inputTokens, outputTokens int) *httptest.Server {
	if content == "" {
		content = "mock response"
	}
	if inputTokens == 0 {
		inputTokens = 10
	}
	if outputTokens == 0 {
		outputTokens = 20
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat/completions", "/v1/chat/completions/":
			resp := OpenAICompatibleResponse{
				ID:     "chatcmpl-test",
				Object: "chat.completion",
				Model:  "gpt-4o",
			}
			resp.Choices = make([]struct {
				Message struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"message"`
				FinishReason string `json:"finish_reason"`
			}, 1)
			resp.Choices[0].Message.Role = "assistant"
			resp.Choices[0].Message.Content = content
			resp.Choices[0].FinishReason = "stop"
			resp.Usage.PromptTokens = inputTokens
			resp.Usage.CompletionTokens = outputTokens
			resp.Usage.TotalTokens = inputTokens + outputTokens

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)

		case "/v1/embeddings", "/v1/embeddings/":
			var req embeddingsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			resp := embeddingsResponse{Object: "list", Model: req.Model}
			for i := len(req.Input) - 1; i >= 0; i-- {
				resp.Data = append(resp.Data, embeddingDatum{
					Object:    "embedding",
					Index:     i,
					Embedding: TestVector(i),
				})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	return httptest.NewServer(handler)
}

// TestVector is the deterministic embedding the mock server returns for the
// input at position i.
func TestVector(i int) []float32 {
	return []float32{float32(i + 1), 1, 0, 0}
}
