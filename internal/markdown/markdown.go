// Package markdown renders CommonMark to sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a plain CommonMark renderer. Raw HTML in the source passes
// the markdown stage and is then filtered by a user-generated-content
// policy.
func New() *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe())),
		policy: bluemonday.UGCPolicy(),
	}
}

// Parse returns the document tree of src. Node segments refer to src, so
// the same bytes must be passed to RenderNode.
func (r *Renderer) Parse(src []byte) ast.Node {
	return r.md.Parser().Parse(text.NewReader(src))
}

func (r *Renderer) Render(src []byte) (string, error) {
	return r.RenderNode(r.Parse(src), src)
}

func (r *Renderer) RenderNode(node ast.Node, src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, node); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return r.policy.SanitizeReader(&buf).String(), nil
}
