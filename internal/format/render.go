package format

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Styles maps emphasis to terminal styles.
type Styles struct {
	Text   lipgloss.Style
	Bold   lipgloss.Style
	Italic lipgloss.Style
}

// DefaultStyles returns unstyled text with plain bold and italic emphasis.
func DefaultStyles() Styles {
	return Styles{
		Text:   lipgloss.NewStyle(),
		Bold:   lipgloss.NewStyle().Bold(true),
		Italic: lipgloss.NewStyle().Italic(true),
	}
}

func (s Styles) pick(n Node) lipgloss.Style {
	switch {
	case n.Bold && n.Italic:
		return s.Bold.Italic(true)
	case n.Bold:
		return s.Bold
	case n.Italic:
		return s.Italic
	default:
		return s.Text
	}
}

// Render styles each node. Node text is already sanitized, so the only escape
// sequences in the output are the ones the styles add.
func (d Document) Render(s Styles) string {
	var b strings.Builder
	for _, n := range d {
		if n.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(s.pick(n).Render(n.Text))
	}
	return b.String()
}

// RenderWrapped renders and word-wraps to width cells. Wrapping is ANSI-aware.
func (d Document) RenderWrapped(s Styles, width int) string {
	rendered := d.Render(s)
	if width <= 0 {
		return rendered
	}
	return wordwrap.String(rendered, width)
}
