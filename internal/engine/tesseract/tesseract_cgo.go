//go:build cgo

package tesseract

import (
	"context"
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/port"
)

// NewDefault uses the tessdata directory named by TESSDATA_PREFIX.
func (p *Provider) NewDefault(_ context.Context) (port.Engine, error) {
	dir, err := FindTessdata(os.Getenv("TESSDATA_PREFIX"), p.language)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	return newEngine(dir, p.language)
}

func (p *Provider) ConstructorParams(_ context.Context) ([]string, error) {
	return []string{ParamModelDir, ParamLanguage}, nil
}

func (p *Provider) NewWithParams(_ context.Context, params map[string]any) (port.Engine, error) {
	modelDir, err := stringParam(params, ParamModelDir)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	lang, err := stringParam(params, ParamLanguage)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	if lang == "" {
		lang = p.language
	}
	dir, err := FindTessdata(modelDir, lang)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	return newEngine(dir, lang)
}

// Engine runs recognition with a fresh gosseract client per call, since a
// client is not safe for concurrent use.
type Engine struct {
	tessdata string
	language string
}

func newEngine(tessdata, lang string) (*Engine, error) {
	e := &Engine{tessdata: tessdata, language: lang}
	client, err := e.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()
	if client.Version() == "" {
		return nil, fmt.Errorf("tesseract: library did not report a version")
	}
	return e, nil
}

func (e *Engine) Name() string { return Name }

func (e *Engine) client() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if err := client.SetTessdataPrefix(e.tessdata); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract: setting tessdata path: %w", err)
	}
	if err := client.SetLanguage(e.language); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract: setting language: %w", err)
	}
	return client, nil
}

// ParseFile returns {"markdown": text, "layout": [...]} with the keys present
// according to the invocation mode. PDF input is not supported.
func (e *Engine) ParseFile(ctx context.Context, input port.EngineInput) (any, error) {
	if input.Kind == domain.InputKindPDF {
		return nil, fmt.Errorf("tesseract: pdf input is not supported")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := e.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImage(input.Path); err != nil {
		return nil, fmt.Errorf("tesseract: loading image: %w", err)
	}

	out := map[string]any{}
	if input.Mode != domain.ModeLayoutOnly {
		text, err := client.Text()
		if err != nil {
			return nil, fmt.Errorf("tesseract: recognizing text: %w", err)
		}
		out["markdown"] = text
	}
	if input.Mode != domain.ModeTextOnly {
		boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
		if err != nil {
			return nil, fmt.Errorf("tesseract: reading bounding boxes: %w", err)
		}
		layout := make([]any, 0, len(boxes))
		for _, box := range boxes {
			layout = append(layout, map[string]any{
				"bbox":       []int{box.Box.Min.X, box.Box.Min.Y, box.Box.Max.X, box.Box.Max.Y},
				"category":   "Text",
				"text":       box.Word,
				"confidence": float64(box.Confidence) / 100.0,
			})
		}
		out["layout"] = layout
	}
	return out, nil
}
