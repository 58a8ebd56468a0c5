package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders content for the terminal with glamour. style is a
// glamour style name or path; "auto" or "" detects it. On any failure the
// content is returned unchanged.
func RenderMarkdown(content, style string, width int) string {
	var options []glamour.TermRendererOption
	if style != "" && style != "auto" {
		options = append(options, glamour.WithStylePath(style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
