//go:build !cgo

package tesseract

import (
	"context"
	"errors"

	"ocrsvc/internal/port"
)

var errNoCgo = errors.New("tesseract: binary built without cgo")

func (p *Provider) NewDefault(context.Context) (port.Engine, error) {
	return nil, errNoCgo
}

func (p *Provider) ConstructorParams(context.Context) ([]string, error) {
	return []string{ParamModelDir, ParamLanguage}, nil
}

func (p *Provider) NewWithParams(context.Context, map[string]any) (port.Engine, error) {
	return nil, errNoCgo
}
