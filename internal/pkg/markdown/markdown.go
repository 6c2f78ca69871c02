// Package markdown renders generated markdown into HTML for stored summary
// bodies and admin previews.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// Render converts markdown text to HTML. Returns "" for blank input and the
// raw text if rendering fails, so a generation result is never lost.
func Render(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := engine.Convert([]byte(trimmed), &buf); err != nil {
		return trimmed
	}
	return buf.String()
}
