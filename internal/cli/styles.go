package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	wasminspect "github.com/wippyai/wasm-inspect"
)

// styles carries the lipgloss styles for each semantic class the
// renderer tags. When color is off every style is the zero style and
// Render passes text through unchanged.
type styles struct {
	name    lipgloss.Style
	literal lipgloss.Style
	keyword lipgloss.Style
	typ     lipgloss.Style
	comment lipgloss.Style
	err     lipgloss.Style
	ok      lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(enabled bool) *styles {
	if !enabled {
		return &styles{}
	}
	return &styles{
		name:    lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		literal: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD580")),
		keyword: lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		typ:     lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		comment: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// colorEnabled decides whether to emit ANSI colors for the given mode
// ("auto", "always", "never") and output writer.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		// Honor NO_COLOR (https://no-color.org/)
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return term.IsTerminal(int(f.Fd()))
		}
		return false
	}
}

// renderParts flattens a rich rendering into a string, applying the
// style matching each semantic marker to the text that follows it.
func renderParts(parts []wasminspect.Part, st *styles) string {
	var b strings.Builder
	active := lipgloss.NewStyle()
	for _, p := range parts {
		switch p.Kind {
		case wasminspect.PartStr:
			b.WriteString(active.Render(p.Text))
		case wasminspect.PartNewline:
			b.WriteByte('\n')
		case wasminspect.PartName:
			active = st.name
		case wasminspect.PartLiteral:
			active = st.literal
		case wasminspect.PartKeyword:
			active = st.keyword
		case wasminspect.PartType:
			active = st.typ
		case wasminspect.PartComment:
			active = st.comment
		case wasminspect.PartReset:
			active = lipgloss.NewStyle()
		}
	}
	return b.String()
}
