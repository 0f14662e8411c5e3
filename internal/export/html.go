package export

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// mathMLElements are the MathML elements emitted for $...$ and $$...$$ formulas.
var mathMLElements = []string{
	"math", "semantics", "annotation", "mrow", "mi", "mn", "mo", "ms", "mtext",
	"mspace", "msup", "msub", "msubsup", "mfrac", "msqrt", "mroot", "mover",
	"munder", "munderover", "mtable", "mtr", "mtd", "mstyle", "mpadded", "mphantom",
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			treeblood.MathML(),
		),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements(mathMLElements...)
	p.AllowAttrs("display", "xmlns", "encoding", "mathvariant", "stretchy", "fence", "separator", "lspace", "rspace").Globally()
	return p
}

// RenderHTML converts OCR markdown (GFM tables, LaTeX formulas) into
// sanitized HTML. Engine output is untrusted, so raw HTML in the markdown is
// filtered.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}
