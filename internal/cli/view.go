package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	wasminspect "github.com/wippyai/wasm-inspect"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	rangeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("#444444"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	viewErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

const listWidth = 34

type viewModel struct {
	err      error
	mod      *wasminspect.Module
	filename string
	items    []wasminspect.Item
	styles   *styles
	viewport viewport.Model
	selected int
	height   int
	width    int
	ready    bool
}

func newViewModel(filename string) *viewModel {
	return &viewModel{filename: filename, styles: newStyles(true)}
}

type moduleLoadedMsg struct {
	err   error
	mod   *wasminspect.Module
	items []wasminspect.Item
}

func (m *viewModel) Init() tea.Cmd {
	return m.load
}

func (m *viewModel) load() tea.Msg {
	mod, err := loadModule(m.filename)
	if err != nil {
		return moduleLoadedMsg{err: err}
	}
	items := mod.Items()
	if len(items) == 0 {
		return moduleLoadedMsg{err: fmt.Errorf("%s: not a decodable module", m.filename)}
	}
	return moduleLoadedMsg{mod: mod, items: items}
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		// selection keys are not forwarded: the viewport binds them too
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.renderSelection()
			}
			return m, nil

		case "down", "j":
			if m.selected < len(m.items)-1 {
				m.selected++
				m.renderSelection()
			}
			return m, nil

		case "home", "g":
			m.selected = 0
			m.renderSelection()
			return m, nil

		case "end", "G":
			if len(m.items) > 0 {
				m.selected = len(m.items) - 1
				m.renderSelection()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		pane := msg.Width - listWidth - 1
		if pane < 20 {
			pane = 20
		}
		if !m.ready {
			m.viewport = viewport.New(pane, msg.Height-3)
			m.ready = true
			m.renderSelection()
		} else {
			m.viewport.Width = pane
			m.viewport.Height = msg.Height - 3
		}

	case moduleLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mod = msg.mod
		m.items = msg.items
		m.renderSelection()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// renderSelection re-renders the viewport with the text of the
// currently selected item's byte range.
func (m *viewModel) renderSelection() {
	if m.mod == nil || !m.ready || len(m.items) == 0 {
		return
	}
	it := m.items[m.selected]
	parts, err := m.mod.PrintRich(it.Range)
	if err != nil {
		m.viewport.SetContent(viewErrStyle.Render(err.Error()))
		return
	}
	content := renderParts(parts, m.styles)
	if content == "" {
		content = helpStyle.Render("(no renderable lines in this range)")
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m *viewModel) View() string {
	if m.err != nil {
		return viewErrStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.mod == nil || !m.ready {
		return "Loading module..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("WASM Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")

	left := m.renderList()
	right := m.viewport.View()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, paneStyle.Render(left), right))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select item • pgup/pgdn scroll • q quit"))
	return b.String()
}

// renderList draws the item column, windowed so the selection stays
// visible on short terminals.
func (m *viewModel) renderList() string {
	rows := m.height - 3
	if rows < 1 {
		rows = 1
	}
	first := 0
	if m.selected >= rows {
		first = m.selected - rows + 1
	}
	last := first + rows
	if last > len(m.items) {
		last = len(m.items)
	}

	var b strings.Builder
	for i := first; i < last; i++ {
		it := m.items[i]
		label := it.DisplayName
		if label != it.RawName {
			label = it.RawName + " $" + it.DisplayName
		}
		span := rangeStyle.Render(fmt.Sprintf("%06x", it.Range.Start))
		line := span + " " + itemStyle.Render(label)
		if i == m.selected {
			line = selectedStyle.Render("> " + it.RawName)
			if it.DisplayName != it.RawName {
				line = selectedStyle.Render("> " + it.RawName + " $" + it.DisplayName)
			}
		} else {
			line = "  " + line
		}
		b.WriteString(lipgloss.NewStyle().Width(listWidth).MaxWidth(listWidth).Render(line))
		if i != last-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func newViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <module>",
		Short: "Browse a module interactively",
		Long: `Open a terminal UI with the module's items on the left and the
WAT-style rendering of the selected item's byte range on the right.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p := tea.NewProgram(newViewModel(args[0]), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
	return cmd
}
