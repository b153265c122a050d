package ui

import "github.com/charmbracelet/glamour"

// MarkdownRenderer renders markdown for terminal display.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// GlamourRenderer renders markdown with glamour's auto-detected style.
type GlamourRenderer struct {
	renderer *glamour.TermRenderer
}

func NewGlamourRenderer() (*GlamourRenderer, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}
	return &GlamourRenderer{renderer: renderer}, nil
}

func (g *GlamourRenderer) Render(markdown string) (string, error) {
	return g.renderer.Render(markdown)
}

// PlainRenderer passes markdown through untouched. Used when the terminal
// cannot take styled output.
type PlainRenderer struct{}

func (PlainRenderer) Render(markdown string) (string, error) {
	return markdown, nil
}
