package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/ops"
	"github.com/matzehuels/arceval/pkg/pipeline"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// ValueListModel - vertex/value browser
// =============================================================================

// ValueListModel is the bubbletea model for browsing evaluated vertices in
// evaluation order.
type ValueListModel struct {
	Graph  *graph.Graph
	Table  *ops.Table
	Values map[string]float64
	Order  []string
	Total  float64

	Cursor int
	Height int
	Offset int
}

// NewValueListModel creates a browser for res.
func NewValueListModel(res *pipeline.Result) ValueListModel {
	return ValueListModel{
		Graph:  res.Graph,
		Table:  res.Table,
		Values: res.Values,
		Order:  res.Order,
		Total:  res.Value,
		Height: 15,
	}
}

func (m ValueListModel) Init() tea.Cmd {
	return nil
}

func (m ValueListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Order)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Order)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-9, 5)
	}
	return m, nil
}

func (m ValueListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Evaluated Vertices"))
	b.WriteString("  ")
	b.WriteString(StyleNumber.Render("total " + formatValue(m.Total)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Order))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		v := m.Order[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, v, m.operation(v), formatValue(m.Values[v])})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Vertex", "Operation", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(m.Order) > 0 {
		b.WriteString(m.arguments(m.Order[m.Cursor]))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Order))))
	}
	return b.String()
}

func (m ValueListModel) operation(v string) string {
	if m.Table == nil {
		return "?"
	}
	op, ok := m.Table.Lookup(v)
	if !ok {
		return "?"
	}
	return op.String()
}

// arguments describes the selected vertex's inputs, e.g. "a = +(b=3, c=4)".
func (m ValueListModel) arguments(v string) string {
	if m.Graph == nil {
		return ""
	}
	children := m.Graph.Children(v)
	if len(children) == 0 {
		return listDimStyle.Render("  " + v + " has no arguments")
	}
	args := make([]string, len(children))
	for i, a := range children {
		args[i] = fmt.Sprintf("%s=%s", a.To, formatValue(m.Values[a.To]))
	}
	return listDimStyle.Render(fmt.Sprintf("  %s = %s(%s)", v, m.operation(v), strings.Join(args, ", ")))
}

// browseValues runs the value browser until the user quits.
func browseValues(res *pipeline.Result) error {
	_, err := tea.NewProgram(NewValueListModel(res), tea.WithAltScreen()).Run()
	return err
}
