// Package render turns plan text, which the planner writes as Markdown, into
// HTML for the web surface.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// PlanHTML renders Markdown to HTML. Raw HTML in the source is omitted.
func PlanHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("rendering plan: %w", err)
	}
	return buf.String(), nil
}
