package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ThemePlain = "plain"
	ThemeAuto  = "auto"
)

var standardThemes = map[string]bool{
	"dark": true, "light": true, "notty": true, "ascii": true,
	"dracula": true, "pink": true, "tokyo-night": true,
}

// Renderer formats markdown for a terminal in one theme. The plain theme
// passes markdown through untouched.
type Renderer struct {
	theme string
	term  *glamour.TermRenderer
}

func NewRenderer(theme string, wordWrap int) (*Renderer, error) {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme == "" {
		theme = ThemeAuto
	}
	if wordWrap <= 0 {
		wordWrap = 80
	}

	var style glamour.TermRendererOption
	switch {
	case theme == ThemePlain:
		return &Renderer{theme: theme}, nil
	case theme == ThemeAuto:
		style = glamour.WithAutoStyle()
	case standardThemes[theme]:
		style = glamour.WithStandardStyle(theme)
	default:
		return nil, fmt.Errorf("unknown theme %q", theme)
	}

	term, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wordWrap))
	if err != nil {
		return nil, fmt.Errorf("create %s renderer: %w", theme, err)
	}
	return &Renderer{theme: theme, term: term}, nil
}

func (r *Renderer) Theme() string { return r.theme }

func (r *Renderer) Render(markdown string) (string, error) {
	if r.term == nil {
		return markdown, nil
	}
	return r.term.Render(markdown)
}
