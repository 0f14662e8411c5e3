package normalize

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ocrsvc/internal/domain"
)

// Field names recognized on a primary record. Order matters: scans take the
// first key present.
var (
	markdownFileKeys = []string{"md_content_path"}
	layoutFileKeys   = []string{"layout_info_path"}

	markdownAliases = []string{"markdown", "markdown_content", "content", "text", "result"}
	layoutAliases   = []string{"layout", "layout_data", "data", "elements", "boxes"}
)

// Normalizer converts raw engine output into a domain.NormalizedResult.
// It never fails: anything it cannot recover degrades to empty fields.
type Normalizer struct {
	readFile func(string) ([]byte, error)
}

// New creates a Normalizer that reads side files from the local filesystem.
func New() *Normalizer {
	return &Normalizer{readFile: os.ReadFile}
}

// Normalize converts raw into the fixed {markdown, layoutData} shape. Side-file
// paths are resolved against baseDir and ignored when they point outside it.
func (n *Normalizer) Normalize(raw any, baseDir string) domain.NormalizedResult {
	out := domain.EmptyResult()
	rr := Decode(raw)

	var primary any
	switch rr.Shape {
	case ListShape:
		if len(rr.List) == 0 {
			return out
		}
		if len(rr.List) > 1 {
			log.Printf("normalize.Normalize: result has %d records, using the first and dropping %d", len(rr.List), len(rr.List)-1)
		}
		primary = rr.List[0]
	case MapShape:
		primary = rr.Map
	default:
		out.Markdown = Text(rr.Other)
		return out
	}

	rec, ok := asMap(primary)
	if !ok {
		out.Markdown = Text(primary)
		return out
	}

	if p, ok := firstString(rec, markdownFileKeys); ok {
		if path, ok := confine(baseDir, p); ok {
			out.Markdown = n.readMarkdown(path)
		}
	}
	if p, ok := firstString(rec, layoutFileKeys); ok {
		if path, ok := confine(baseDir, p); ok {
			out.LayoutData = n.readLayout(path)
		}
	}

	if out.Markdown == "" {
		if v, ok := firstPresent(rec, markdownAliases); ok {
			out.Markdown = Text(v)
		}
	}
	if len(out.LayoutData) == 0 {
		if v, ok := firstPresent(rec, layoutAliases); ok {
			out.LayoutData = records(v)
		}
	}
	return out
}

func (n *Normalizer) readMarkdown(path string) string {
	b, err := n.readFile(path)
	if err != nil {
		log.Printf("normalize.readMarkdown: cannot read %s: %v", path, err)
		return ""
	}
	return string(b)
}

func (n *Normalizer) readLayout(path string) []any {
	b, err := n.readFile(path)
	if err != nil {
		log.Printf("normalize.readLayout: cannot read %s: %v", path, err)
		return []any{}
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		log.Printf("normalize.readLayout: %s is not valid JSON: %v", path, err)
		return []any{}
	}
	return records(v)
}

// records turns a layout value into an ordered record list: sequences are
// used as-is, nil becomes empty, any other value becomes a single record.
func records(v any) []any {
	if v == nil {
		return []any{}
	}
	if l, ok := asList(v); ok {
		return l
	}
	return []any{v}
}

func firstPresent(rec map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstString(rec map[string]any, keys []string) (string, bool) {
	v, ok := firstPresent(rec, keys)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		log.Printf("normalize.firstString: ignoring %T value for %v", v, keys)
		return "", false
	}
	return s, true
}

// confine resolves a side-file path named by the engine and accepts it only if
// it stays inside baseDir, following symlinks when the file exists. Engine
// output may be model-generated text, so it never selects arbitrary local files.
func confine(baseDir, p string) (string, bool) {
	if baseDir == "" {
		log.Printf("normalize.confine: no artifact directory, ignoring side file %s", p)
		return "", false
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		log.Printf("normalize.confine: %v", err)
		return "", false
	}
	path := p
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	path = filepath.Clean(path)
	if !within(base, path) {
		log.Printf("normalize.confine: ignoring side file %s outside %s", p, base)
		return "", false
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		realBase, err := filepath.EvalSymlinks(base)
		if err != nil || !within(realBase, real) {
			log.Printf("normalize.confine: ignoring side file %s resolving outside %s", p, base)
			return "", false
		}
	}
	return path, true
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
