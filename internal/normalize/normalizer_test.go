package normalize_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrsvc/internal/normalize"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestNormalize_MarkdownSideFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "page.md", "X")

	got := normalize.New().Normalize([]any{map[string]any{"md_content_path": p}}, dir)

	assert.Equal(t, "X", got.Markdown)
	assert.Equal(t, []any{}, got.LayoutData)
}

func TestNormalize_RelativeSideFilesResolvedAgainstBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.md", "# Title")
	writeFile(t, dir, "page.json", `[{"bbox":[1,2,3,4],"category":"Title"}]`)

	got := normalize.New().Normalize(map[string]any{
		"md_content_path":  "page.md",
		"layout_info_path": "page.json",
	}, dir)

	assert.Equal(t, "# Title", got.Markdown)
	require.Len(t, got.LayoutData, 1)
	assert.Equal(t, "Title", got.LayoutData[0].(map[string]any)["category"])
}

func TestNormalize_LayoutSideFileObjectWrapped(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "layout.json", `{"category":"Text"}`)

	got := normalize.New().Normalize(map[string]any{"layout_info_path": p}, dir)

	assert.Equal(t, []any{map[string]any{"category": "Text"}}, got.LayoutData)
}

func TestNormalize_UnreadableSideFilesFallBackToAliases(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", "{not json")

	got := normalize.New().Normalize(map[string]any{
		"md_content_path":  filepath.Join(dir, "missing.md"),
		"layout_info_path": bad,
		"text":             "fallback",
		"elements":         []any{"e1"},
	}, dir)

	assert.Equal(t, "fallback", got.Markdown)
	assert.Equal(t, []any{"e1"}, got.LayoutData)
}

func TestNormalize_SideFilesOutsideBaseDirIgnored(t *testing.T) {
	outside := t.TempDir()
	secret := writeFile(t, outside, "secret.md", "do not leak")
	secretLayout := writeFile(t, outside, "secret.json", `[{"category":"Text"}]`)
	base := t.TempDir()

	tests := []struct {
		name   string
		md     string
		layout string
	}{
		{"absolute", secret, secretLayout},
		{"relative traversal", filepath.Join("..", filepath.Base(outside), "secret.md"), filepath.Join("..", filepath.Base(outside), "secret.json")},
		{"system file", "/etc/passwd", "/etc/hosts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.New().Normalize(map[string]any{
				"md_content_path":  tt.md,
				"layout_info_path": tt.layout,
				"markdown":         "inline",
			}, base)

			assert.Equal(t, "inline", got.Markdown)
			assert.Equal(t, []any{}, got.LayoutData)
		})
	}
}

func TestNormalize_SymlinkOutsideBaseDirIgnored(t *testing.T) {
	outside := t.TempDir()
	secret := writeFile(t, outside, "secret.md", "do not leak")
	base := t.TempDir()
	link := filepath.Join(base, "page.md")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got := normalize.New().Normalize(map[string]any{"md_content_path": "page.md"}, base)

	assert.Equal(t, "", got.Markdown)
}

func TestNormalize_SideFilesIgnoredWithoutBaseDir(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "page.md", "X")

	got := normalize.New().Normalize(map[string]any{"md_content_path": p, "text": "inline"}, "")

	assert.Equal(t, "inline", got.Markdown)
}

func TestNormalize_AliasScan(t *testing.T) {
	got := normalize.New().Normalize(map[string]any{"content": "abc", "boxes": []any{1, 2}}, "")

	assert.Equal(t, "abc", got.Markdown)
	assert.Equal(t, []any{1, 2}, got.LayoutData)
}

func TestNormalize_AliasOrder(t *testing.T) {
	got := normalize.New().Normalize(map[string]any{
		"result":   "last",
		"text":     "fourth",
		"markdown": "first",
		"boxes":    []any{"last"},
		"layout":   []any{"first"},
	}, "")

	assert.Equal(t, "first", got.Markdown)
	assert.Equal(t, []any{"first"}, got.LayoutData)
}

func TestNormalize_NilAliasSkipped(t *testing.T) {
	got := normalize.New().Normalize(map[string]any{
		"markdown": nil,
		"content":  "second",
		"layout":   nil,
		"data":     []any{"d"},
	}, "")

	assert.Equal(t, "second", got.Markdown)
	assert.Equal(t, []any{"d"}, got.LayoutData)
}

func TestNormalize_NonStringMarkdownCoerced(t *testing.T) {
	got := normalize.New().Normalize(map[string]any{"text": 42.5, "layout": map[string]any{"a": 1.0}}, "")

	assert.Equal(t, "42.5", got.Markdown)
	assert.Equal(t, []any{map[string]any{"a": 1.0}}, got.LayoutData)
}

func TestNormalize_OpaqueString(t *testing.T) {
	got := normalize.New().Normalize("opaque-string", "")

	assert.Equal(t, "opaque-string", got.Markdown)
	assert.Equal(t, []any{}, got.LayoutData)
}

func TestNormalize_Nil(t *testing.T) {
	got := normalize.New().Normalize(nil, "")

	assert.Equal(t, "", got.Markdown)
	assert.Equal(t, []any{}, got.LayoutData)
}

func TestNormalize_EmptyList(t *testing.T) {
	got := normalize.New().Normalize([]any{}, "")

	assert.Equal(t, "", got.Markdown)
	assert.Equal(t, []any{}, got.LayoutData)
}

func TestNormalize_FirstRecordOnly(t *testing.T) {
	got := normalize.New().Normalize([]map[string]any{
		{"markdown": "page 1"},
		{"markdown": "page 2"},
	}, "")

	assert.Equal(t, "page 1", got.Markdown)
}

func TestNormalize_NonMapPrimary(t *testing.T) {
	got := normalize.New().Normalize([]any{"just text", "more"}, "")

	assert.Equal(t, "just text", got.Markdown)
	assert.Equal(t, []any{}, got.LayoutData)
}

func TestNormalize_NoKnownFields(t *testing.T) {
	got := normalize.New().Normalize(map[string]any{"unrelated": "x"}, "")

	assert.Equal(t, "", got.Markdown)
	assert.Equal(t, []any{}, got.LayoutData)
}

func TestNormalize_NonStringPathIgnored(t *testing.T) {
	got := normalize.New().Normalize(map[string]any{"md_content_path": 7, "markdown": "inline"}, "")

	assert.Equal(t, "inline", got.Markdown)
}
