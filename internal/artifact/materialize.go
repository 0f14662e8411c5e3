package artifact

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"ocrsvc/internal/config"
	"ocrsvc/internal/domain"
)

var pdfMagic = []byte("%PDF-")

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
}

// Payload is a decoded request payload plus the metadata derived while decoding it.
type Payload struct {
	Kind   domain.InputKind
	Data   []byte
	Image  image.Image
	Width  int
	Height int
	Pages  int
}

// Materializer decodes request payloads and writes canonical artifacts.
type Materializer struct {
	tempDir      string
	maxBytes     int64
	maxImageSide int
}

// NewMaterializer creates a Materializer from the input config.
func NewMaterializer(cfg *config.InputConfig) *Materializer {
	return &Materializer{
		tempDir:      cfg.TempDir,
		maxBytes:     cfg.MaxPayloadBytes(),
		maxImageSide: cfg.MaxImageSide,
	}
}

// Decode turns the single present payload of req into a Payload. The request
// must already be validated. All failures are *domain.DecodeError.
func (m *Materializer) Decode(req domain.OCRRequest) (*Payload, error) {
	kind, encoded := domain.InputKindImage, req.ImageData
	if req.HasPDF() {
		kind, encoded = domain.InputKindPDF, req.PDFData
	}

	data, err := DecodeBase64(encoded)
	if err != nil {
		return nil, &domain.DecodeError{Kind: kind, Err: err}
	}
	if len(data) == 0 {
		return nil, &domain.DecodeError{Kind: kind, Err: errors.New("payload is empty")}
	}
	if m.maxBytes > 0 && int64(len(data)) > m.maxBytes {
		return nil, &domain.DecodeError{Kind: kind, Err: fmt.Errorf("payload is %d bytes, limit is %d", len(data), m.maxBytes)}
	}

	if kind == domain.InputKindPDF {
		return decodePDF(data)
	}
	return decodeImage(data)
}

func decodeImage(data []byte) (*Payload, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &domain.DecodeError{Kind: domain.InputKindImage, Err: err}
	}
	b := img.Bounds()
	log.Printf("artifact.Decode: image loaded, size %dx%d", b.Dx(), b.Dy())
	return &Payload{
		Kind:   domain.InputKindImage,
		Data:   data,
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func decodePDF(data []byte) (*Payload, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, &domain.DecodeError{Kind: domain.InputKindPDF, Err: errors.New("missing %PDF- header")}
	}
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &domain.DecodeError{Kind: domain.InputKindPDF, Err: fmt.Errorf("pdfcpu read: %w", err)}
	}
	log.Printf("artifact.Decode: pdf loaded, %d pages, %d bytes", ctx.PageCount, len(data))
	return &Payload{
		Kind:  domain.InputKindPDF,
		Data:  data,
		Pages: ctx.PageCount,
	}, nil
}

// Materialize writes p to a fresh temporary file and hands ownership of it to
// the caller. Images are re-encoded to PNG; PDFs are written byte-for-byte.
func (m *Materializer) Materialize(p *Payload) (*Artifact, error) {
	f, err := os.CreateTemp(m.tempDir, "ocr-input-*"+p.Kind.Extension())
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	a := &Artifact{Path: f.Name(), Kind: p.Kind}

	switch p.Kind {
	case domain.InputKindPDF:
		_, err = f.Write(p.Data)
	default:
		img := p.Image
		if m.maxImageSide > 0 && (p.Width > m.maxImageSide || p.Height > m.maxImageSide) {
			img = imaging.Fit(img, m.maxImageSide, m.maxImageSide, imaging.Lanczos)
		}
		err = imaging.Encode(f, img, imaging.PNG)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.Release()
		return nil, fmt.Errorf("writing %s artifact: %w", p.Kind, err)
	}
	return a, nil
}

// DecodeBase64 decodes standard, URL-safe, padded or unpadded base64, with an
// optional data URL prefix ("data:image/png;base64,") and embedded whitespace.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, errors.New("malformed data URL")
		}
		s = s[i+1:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', ' ':
			return -1
		}
		return r
	}, s)

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var firstErr error
	for _, enc := range encodings {
		out, err := enc.DecodeString(s)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("invalid base64: %w", firstErr)
}
