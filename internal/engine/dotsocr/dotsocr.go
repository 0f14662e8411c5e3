// Package dotsocr talks to a dots.ocr inference sidecar over HTTP.
//
// The sidecar shares the artifact filesystem with this process: requests carry
// the artifact path, and side files named in the result are written next to it.
package dotsocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ocrsvc/internal/config"
	"ocrsvc/internal/port"
)

// Name is the registry name of this provider.
const Name = "dotsocr"

const (
	healthPath = "/health"
	paramsPath = "/v1/parser/params"
	parserPath = "/v1/parser"
	parsePath  = "/v1/parse"
)

// Provider implements port.EngineProvider against a dots.ocr sidecar.
type Provider struct {
	endpoint string
	client   *http.Client
}

// NewProvider creates a sidecar provider from the engine config.
func NewProvider(cfg *config.EngineConfig) (port.EngineProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("dotsocr: engine.endpoint is required")
	}
	return NewProviderWithClient(cfg.Endpoint, &http.Client{Timeout: cfg.Timeout()}), nil
}

// NewProviderWithClient creates a provider with a caller-supplied HTTP client (for testing).
func NewProviderWithClient(endpoint string, client *http.Client) *Provider {
	return &Provider{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
	}
}

func (p *Provider) Name() string { return Name }

// NewDefault succeeds when the sidecar reports a default parser loaded.
func (p *Provider) NewDefault(ctx context.Context) (port.Engine, error) {
	var health struct {
		Status        string `json:"status"`
		DefaultParser bool   `json:"default_parser"`
	}
	if err := p.do(ctx, http.MethodGet, healthPath, nil, &health); err != nil {
		return nil, err
	}
	if !health.DefaultParser {
		return nil, fmt.Errorf("dotsocr: sidecar has no default parser (status %q)", health.Status)
	}
	return &Engine{provider: p}, nil
}

func (p *Provider) ConstructorParams(ctx context.Context) ([]string, error) {
	var out struct {
		Params []string `json:"params"`
	}
	if err := p.do(ctx, http.MethodGet, paramsPath, nil, &out); err != nil {
		return nil, err
	}
	return out.Params, nil
}

func (p *Provider) NewWithParams(ctx context.Context, params map[string]any) (port.Engine, error) {
	var out struct {
		ParserID string `json:"parser_id"`
	}
	if err := p.do(ctx, http.MethodPost, parserPath, params, &out); err != nil {
		return nil, err
	}
	if out.ParserID == "" {
		return nil, fmt.Errorf("dotsocr: sidecar returned an empty parser_id")
	}
	return &Engine{provider: p, parserID: out.ParserID}, nil
}

// Engine is a parser instance hosted by the sidecar.
type Engine struct {
	provider *Provider
	parserID string
}

func (e *Engine) Name() string { return Name }

type parseRequest struct {
	ParserID   string `json:"parser_id,omitempty"`
	InputPath  string `json:"input_path"`
	InputKind  string `json:"input_kind"`
	PromptMode string `json:"prompt_mode"`
}

// ParseFile returns the sidecar's JSON result decoded without a fixed schema.
func (e *Engine) ParseFile(ctx context.Context, input port.EngineInput) (any, error) {
	req := parseRequest{
		ParserID:   e.parserID,
		InputPath:  input.Path,
		InputKind:  string(input.Kind),
		PromptMode: string(input.Mode),
	}
	var out any
	if err := e.provider.do(ctx, http.MethodPost, parsePath, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Provider) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling dotsocr sidecar: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dotsocr sidecar error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
