package dotsocr_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrsvc/internal/config"
	"ocrsvc/internal/domain"
	"ocrsvc/internal/engine"
	"ocrsvc/internal/engine/dotsocr"
	"ocrsvc/internal/port"
)

type sidecar struct {
	defaultParser bool
	params        []string
	gotParams     map[string]any
	gotParse      map[string]any
	parseResult   string
}

func (s *sidecar) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "default_parser": s.defaultParser})
	})
	mux.HandleFunc("GET /v1/parser/params", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"params": s.params})
	})
	mux.HandleFunc("POST /v1/parser", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&s.gotParams))
		_ = json.NewEncoder(w).Encode(map[string]any{"parser_id": "p-1"})
	})
	mux.HandleFunc("POST /v1/parse", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&s.gotParse))
		_, _ = w.Write([]byte(s.parseResult))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_DefaultConstructor(t *testing.T) {
	sc := &sidecar{defaultParser: true, parseResult: `[{"md_content_path":"/tmp/x.md"}]`}
	p := dotsocr.NewProviderWithClient(sc.server(t).URL, http.DefaultClient)

	eng, err := p.NewDefault(context.Background())
	require.NoError(t, err)

	raw, err := eng.ParseFile(context.Background(), port.EngineInput{
		Path: "/tmp/ocr-input-1.png",
		Kind: domain.InputKindImage,
		Mode: domain.ModeTextOnly,
	})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"md_content_path": "/tmp/x.md"}}, raw)
	assert.Equal(t, "/tmp/ocr-input-1.png", sc.gotParse["input_path"])
	assert.Equal(t, "prompt_ocr", sc.gotParse["prompt_mode"])
	assert.Equal(t, "image", sc.gotParse["input_kind"])
	assert.NotContains(t, sc.gotParse, "parser_id")
}

func TestProvider_NoDefaultParser(t *testing.T) {
	sc := &sidecar{defaultParser: false}
	p := dotsocr.NewProviderWithClient(sc.server(t).URL, http.DefaultClient)

	_, err := p.NewDefault(context.Background())
	assert.ErrorContains(t, err, "no default parser")
}

func TestProvider_ConstructFallsBackToParams(t *testing.T) {
	sc := &sidecar{
		defaultParser: false,
		params:        []string{"weights_dir", "device", "use_hf"},
		parseResult:   `{"markdown":"hello"}`,
	}
	p := dotsocr.NewProviderWithClient(sc.server(t).URL, http.DefaultClient)

	eng, err := engine.Construct(context.Background(), p, "/models/DotsOCR")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"use_hf": true, "weights_dir": "/models/DotsOCR"}, sc.gotParams)

	raw, err := eng.ParseFile(context.Background(), port.EngineInput{Path: "/tmp/a.pdf", Kind: domain.InputKindPDF, Mode: domain.ModeLayoutAll})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"markdown": "hello"}, raw)
	assert.Equal(t, "p-1", sc.gotParse["parser_id"])
}

func TestProvider_SidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	p := dotsocr.NewProviderWithClient(srv.URL, http.DefaultClient)

	_, err := p.NewDefault(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestProvider_Unreachable(t *testing.T) {
	p := dotsocr.NewProviderWithClient("http://127.0.0.1:1", http.DefaultClient)

	_, err := engine.Construct(context.Background(), p, "/m")

	var initErr *domain.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, dotsocr.Name, initErr.Provider)
}

func TestNewProvider_RequiresEndpoint(t *testing.T) {
	_, err := dotsocr.NewProvider(&config.EngineConfig{})
	assert.Error(t, err)

	p, err := dotsocr.NewProvider(&config.EngineConfig{Endpoint: "http://sidecar:8000/"})
	require.NoError(t, err)
	assert.Equal(t, dotsocr.Name, p.Name())
}
