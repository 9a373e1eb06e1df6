// Package ollama implements scholarmail.Extractor against a local Ollama
// server using its chat endpoint with JSON-formatted output.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/scholarmail"
)

// Defaults applied when the request config leaves a field empty.
const (
	DefaultEndpoint = "http://localhost:11434"
	DefaultModel    = "gemma3:27b"
	DefaultTimeout  = 5 * time.Minute
)

// chatPath is the Ollama chat completion endpoint.
const chatPath = "/api/chat"

var _ scholarmail.Extractor = (*Extractor)(nil)

// Extractor talks to the Ollama chat API. The whole response is read in one
// piece; streaming is disabled.
type Extractor struct {
	client    *http.Client
	converter scholarmail.Converter
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		e.client = c
	}
}

// WithConverter converts the email body with c before it is sent to the
// model.
func WithConverter(c scholarmail.Converter) Option {
	return func(e *Extractor) {
		e.converter = c
	}
}

// NewExtractor creates a new Ollama-backed Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = &http.Client{Timeout: DefaultTimeout}
	}
	return e
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	Temperature float32 `json:"temperature"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Format   string    `json:"format"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type chatResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error"`
}

// Extract sends the instruction and email body to the chat endpoint and
// decodes the JSON reply into candidates.
func (e *Extractor) Extract(ctx context.Context, req scholarmail.ExtractRequest) ([]scholarmail.Candidate, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "email body required")
	}

	content := req.HTML
	if e.converter != nil {
		md, err := e.converter.Convert(req.HTML)
		if err != nil {
			return nil, fmt.Errorf("convert email body: %w", err)
		}
		content = md
	}

	body, err := json.Marshal(buildRequest(req.Config, req.Instruction, content))
	if err != nil {
		return nil, err
	}

	if req.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Config.Timeout)
		defer cancel()
	}

	url := strings.TrimRight(endpoint(req.Config), "/") + chatPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var chat chatResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(raw, &chat) == nil && chat.Error != "" {
			return nil, scholarmail.Errorf(scholarmail.EEXTRACT, "ollama: HTTP %d: %s", resp.StatusCode, chat.Error)
		}
		return nil, scholarmail.Errorf(scholarmail.EEXTRACT, "ollama: HTTP %d for %s", resp.StatusCode, url)
	}
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, scholarmail.Errorf(scholarmail.EEXTRACT, "ollama: malformed chat response: %v", err)
	}

	return scholarmail.ParseCandidates(chat.Message.Content)
}

// buildRequest returns the chat request for an extraction: the instruction
// as the system message and the email body as the user message.
func buildRequest(cfg scholarmail.ExtractorConfig, instruction, content string) chatRequest {
	if instruction == "" {
		instruction = scholarmail.DefaultInstruction
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	format := cfg.Format
	if format == "" {
		format = scholarmail.FormatJSON
	}
	return chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: instruction},
			{Role: "user", Content: content},
		},
		Format:  format,
		Stream:  false,
		Options: options{Temperature: cfg.Temperature},
	}
}

func endpoint(cfg scholarmail.ExtractorConfig) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return DefaultEndpoint
}
