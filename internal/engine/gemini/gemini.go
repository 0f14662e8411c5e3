// Package gemini runs OCR through the Google Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ocrsvc/internal/config"
	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

// Name is the registry name of this provider.
const Name = "gemini"

// Constructor parameters understood by NewWithParams.
const (
	ParamAPIKey = "api_key"
	ParamModel  = "model"
)

const defaultModel = "gemini-2.0-flash"

var prompts = map[domain.InvocationMode]string{
	domain.ModeLayoutAll: `Extract all content from this document page.
Return JSON: {"markdown": "<page content as markdown>", "layout": [{"bbox": [x1, y1, x2, y2], "category": "<Title|Text|Table|Picture|...>", "text": "<text>"}]}.
Output JSON only.`,
	domain.ModeLayoutOnly: `Detect the layout elements of this document page.
Return JSON: {"layout": [{"bbox": [x1, y1, x2, y2], "category": "<Title|Text|Table|Picture|...>"}]}.
Output JSON only.`,
	domain.ModeTextOnly: `Transcribe all text in this document verbatim as markdown. Output the text only, with no commentary.`,
}

// Provider implements port.EngineProvider for Gemini.
type Provider struct {
	apiKey string
	model  string
}

// NewProvider creates a Gemini provider from the engine config.
func NewProvider(cfg *config.EngineConfig) (port.EngineProvider, error) {
	return &Provider{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  strings.TrimSpace(cfg.Model),
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) NewDefault(ctx context.Context) (port.Engine, error) {
	return newEngine(ctx, p.apiKey, p.model)
}

func (p *Provider) ConstructorParams(context.Context) ([]string, error) {
	return []string{ParamAPIKey, ParamModel}, nil
}

func (p *Provider) NewWithParams(ctx context.Context, params map[string]any) (port.Engine, error) {
	apiKey, model := p.apiKey, p.model
	if v, ok := params[ParamAPIKey].(string); ok && v != "" {
		apiKey = v
	}
	if v, ok := params[ParamModel].(string); ok && v != "" {
		model = v
	}
	return newEngine(ctx, apiKey, model)
}

// Engine holds one Gemini client for the lifetime of the process.
type Engine struct {
	client *genai.Client
	model  string
}

func newEngine(ctx context.Context, apiKey, model string) (*Engine, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	if model == "" {
		model = defaultModel
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Engine{client: cl, model: model}, nil
}

func (e *Engine) Name() string { return Name }

// Close releases the underlying client.
func (e *Engine) Close() error {
	return e.client.Close()
}

// ParseFile sends the artifact to Gemini. Layout modes ask for a JSON object;
// when the reply is not valid JSON the raw text is returned instead.
func (e *Engine) ParseFile(ctx context.Context, input port.EngineInput) (any, error) {
	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, fmt.Errorf("gemini: reading artifact: %w", err)
	}

	m := e.client.GenerativeModel(e.model)
	m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}
	if input.Mode != domain.ModeTextOnly {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}

	prompt, ok := prompts[input.Mode]
	if !ok {
		prompt = prompts[domain.ModeLayoutAll]
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(prompt),
		&genai.Blob{MIMEType: input.Kind.ContentType(), Data: data},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	txt := StripCodeFences(firstText(resp))
	if input.Mode == domain.ModeTextOnly {
		return txt, nil
	}

	var out any
	if err := json.Unmarshal([]byte(txt), &out); err != nil {
		return txt, nil
	}
	return out, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

// StripCodeFences removes a surrounding ``` or ```json fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func ptrFloat32(v float32) *float32 { return &v }
