// Package tesseract runs Tesseract OCR in-process through gosseract.
//
// The cgo build links libtesseract; without cgo every construction attempt
// fails and requests are answered with the degraded response.
package tesseract

import (
	"fmt"
	"os"
	"path/filepath"

	"ocrsvc/internal/config"
	"ocrsvc/internal/port"
)

// Name is the registry name of this provider.
const Name = "tesseract"

// Constructor parameters understood by NewWithParams.
const (
	ParamModelDir = "model_dir"
	ParamLanguage = "language"
)

const defaultLanguage = "eng"

// NewProvider creates a Tesseract provider from the engine config.
func NewProvider(cfg *config.EngineConfig) (port.EngineProvider, error) {
	lang := cfg.Language
	if lang == "" {
		lang = defaultLanguage
	}
	return &Provider{language: lang}, nil
}

// Provider implements port.EngineProvider for Tesseract.
type Provider struct {
	language string
}

func (p *Provider) Name() string { return Name }

// FindTessdata returns the directory holding <lang>.traineddata, checking dir
// itself and dir/tessdata.
func FindTessdata(dir, lang string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("tessdata directory not set")
	}
	for _, candidate := range []string{dir, filepath.Join(dir, "tessdata")} {
		if _, err := os.Stat(filepath.Join(candidate, lang+".traineddata")); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s.traineddata not found under %s", lang, dir)
}

// stringParam reads an optional string parameter.
func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s: expected string, got %T", key, v)
	}
	return s, nil
}
