package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/scholarmail"
	"github.com/fwojciec/scholarmail/mock"
	"github.com/fwojciec/scholarmail/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ scholarmail.Extractor = (*ollama.Extractor)(nil)

type capturedRequest struct {
	Model    string `json:"model"`
	Format   string `json:"format"`
	Stream   bool   `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Options struct {
		Temperature float32 `json:"temperature"`
	} `json:"options"`
}

// chatServer replies with content as the assistant message and records the
// decoded request.
func chatServer(t *testing.T, content string, got *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "gemma3:27b",
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    true,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("decodes candidates from assistant message", func(t *testing.T) {
		t.Parallel()

		server := chatServer(t, `[{"title":"X-ray seed study","original_url":"https://www.nature.com/articles/s41598-025-88482-7","authors":"M Griffiths","journal_name":"Scientific Reports","year_of_publication":2025,"snippet":"Phenotyping"}]`, nil)
		extractor := ollama.NewExtractor()

		candidates, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<h3>X-ray seed study</h3>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "X-ray seed study", candidates[0].Title)
		assert.Equal(t, "2025", candidates[0].YearOfPublication)
		assert.Equal(t, "Scientific Reports", candidates[0].JournalName)
	})

	t.Run("sends instruction, body and generation settings", func(t *testing.T) {
		t.Parallel()

		var got capturedRequest
		server := chatServer(t, `[]`, &got)
		extractor := ollama.NewExtractor()

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:        "<h3>Title</h3>",
			Instruction: "extract citations",
			Config:      scholarmail.ExtractorConfig{Endpoint: server.URL + "/", Model: "llama3"},
		})

		require.NoError(t, err)
		assert.Equal(t, "llama3", got.Model)
		assert.Equal(t, "json", got.Format)
		assert.False(t, got.Stream)
		assert.InDelta(t, 0, got.Options.Temperature, 0.001)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "extract citations", got.Messages[0].Content)
		assert.Equal(t, "user", got.Messages[1].Role)
		assert.Equal(t, "<h3>Title</h3>", got.Messages[1].Content)
	})

	t.Run("applies defaults for empty config", func(t *testing.T) {
		t.Parallel()

		var got capturedRequest
		server := chatServer(t, `[]`, &got)
		extractor := ollama.NewExtractor()

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<h3>Title</h3>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.NoError(t, err)
		assert.Equal(t, ollama.DefaultModel, got.Model)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, scholarmail.DefaultInstruction, got.Messages[0].Content)
	})

	t.Run("sends converted body when converter is set", func(t *testing.T) {
		t.Parallel()

		var got capturedRequest
		server := chatServer(t, `[]`, &got)
		conv := &mock.Converter{
			ConvertFn: func(string) (string, error) { return "### Title", nil },
		}
		extractor := ollama.NewExtractor(ollama.WithConverter(conv))

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<h3>Title</h3>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.NoError(t, err)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "### Title", got.Messages[1].Content)
	})

	t.Run("returns no candidates for empty result", func(t *testing.T) {
		t.Parallel()

		server := chatServer(t, `{"results": []}`, nil)
		extractor := ollama.NewExtractor()

		candidates, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<p>nothing</p>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("returns EEXTRACT for non-JSON content", func(t *testing.T) {
		t.Parallel()

		server := chatServer(t, "Here are the results: none", nil)
		extractor := ollama.NewExtractor()

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<p>x</p>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.Error(t, err)
		assert.Equal(t, scholarmail.EEXTRACT, scholarmail.ErrorCode(err))
	})

	t.Run("returns server error message for non-200 status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model \"gemma3:27b\" not found, try pulling it first"}`))
		}))
		defer server.Close()
		extractor := ollama.NewExtractor()

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<p>x</p>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.Error(t, err)
		assert.Equal(t, scholarmail.EEXTRACT, scholarmail.ErrorCode(err))
		assert.Contains(t, scholarmail.ErrorMessage(err), "404")
		assert.Contains(t, scholarmail.ErrorMessage(err), "try pulling it first")
	})

	t.Run("respects config timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()
		extractor := ollama.NewExtractor()

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<p>x</p>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL, Timeout: 10 * time.Millisecond},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("respects custom HTTP client", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()
		extractor := ollama.NewExtractor(ollama.WithHTTPClient(&http.Client{Timeout: 10 * time.Millisecond}))

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<p>x</p>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := chatServer(t, `[]`, nil)
		extractor := ollama.NewExtractor()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := extractor.Extract(ctx, scholarmail.ExtractRequest{
			HTML:   "<p>x</p>",
			Config: scholarmail.ExtractorConfig{Endpoint: server.URL},
		})

		require.Error(t, err)
	})

	t.Run("returns error for empty body", func(t *testing.T) {
		t.Parallel()

		extractor := ollama.NewExtractor()

		_, err := extractor.Extract(context.Background(), scholarmail.ExtractRequest{HTML: ""})

		require.Error(t, err)
		assert.Equal(t, scholarmail.EINVALID, scholarmail.ErrorCode(err))
	})
}
