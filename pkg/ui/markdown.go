package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders a changelog for the terminal. Styled output picks a
// dark or light theme automatically; unstyled output uses glamour's notty
// style. On any rendering error the source is returned unchanged.
func RenderMarkdown(content string, styled bool, width int) string {
	if strings.TrimSpace(content) == "" {
		return content
	}

	var options []glamour.TermRendererOption
	if styled {
		options = append(options, glamour.WithAutoStyle())
	} else {
		options = append(options, glamour.WithStandardStyle("notty"))
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
