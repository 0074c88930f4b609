package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnavailable indicates the service could not be reached at all.
	ErrUnavailable = errors.New("ollama service unreachable")

	// ErrModelMissing indicates the required model is not installed.
	ErrModelMissing = errors.New("model not installed")

	// ErrNoEmbeddings indicates an embed call returned no vectors.
	ErrNoEmbeddings = errors.New("no embeddings returned")
)

// DefaultBaseURL is the local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// Config holds the client's endpoint and per-call timeouts.
type Config struct {
	BaseURL string

	// EmbedTimeout bounds /api/embed calls.
	EmbedTimeout time.Duration

	// GenerateTimeout bounds /api/generate calls; vision models are slow.
	GenerateTimeout time.Duration

	// TagsTimeout bounds the /api/tags probe.
	TagsTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = 30 * time.Second
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = 180 * time.Second
	}
	if c.TagsTimeout <= 0 {
		c.TagsTimeout = 5 * time.Second
	}
	return c
}

// Client talks to one Ollama instance.
type Client struct {
	config Config
	client *http.Client
	log    *zap.Logger
}

// NewClient builds a client. A nil logger is replaced with a no-op one.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		config: cfg.withDefaults(),
		client: &http.Client{},
		log:    log,
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding vector for input. The API returns a batch of
// vectors; the first element is used.
func (c *Client) Embed(ctx context.Context, model, input string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.EmbedTimeout)
	defer cancel()

	var resp embedResponse
	if err := c.post(ctx, "/api/embed", embedRequest{Model: model, Input: input}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	return resp.Embeddings[0], nil
}

// GenerateRequest is a non-streaming /api/generate call. Images carry
// base64-encoded payloads for vision models.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Images      []string
	Temperature float64
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate runs a non-streaming completion and returns the response text.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.GenerateTimeout)
	defer cancel()

	body := generateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Images:  req.Images,
		Stream:  false,
		Options: generateOptions{Temperature: req.Temperature},
	}
	var resp generateResponse
	if err := c.post(ctx, "/api/generate", body, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// InstalledModels lists the model names the service reports as installed.
// A transport failure is reported as ErrUnavailable: the caller cannot
// distinguish "service down" from "model missing" otherwise.
func (c *Client) InstalledModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.TagsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags response: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
