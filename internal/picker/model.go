package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#10B981"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// model is the bubbletea list of account names.
type model struct {
	names  []string
	cursor int
	chosen int
}

func newModel(names []string) model {
	return model{names: names, chosen: -1}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.names) - 1
	case "enter":
		m.chosen = m.cursor
		return m, tea.Quit
	default:
		// 1-9 jumps straight to an entry.
		if r := key.Runes; len(r) == 1 && r[0] >= '1' && r[0] <= '9' {
			if i := int(r[0] - '1'); i < len(m.names) {
				m.cursor = i
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.chosen >= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("选择登录账户"))
	b.WriteString("\n\n")
	for i, name := range m.names {
		label := fmt.Sprintf("%d. %s", i+1, name)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render(">"))
			b.WriteString(selectedStyle.Render(label))
		} else {
			b.WriteString(" ")
			b.WriteString(itemStyle.Render(label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ 移动  enter 确认  q 退出"))
	b.WriteString("\n")
	return b.String()
}
