package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/core/label"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// filterCycle is the order in which tab steps through kind filters.
// The empty kind shows everything.
var filterCycle = []batch.Kind{"", batch.KindDimension, batch.KindSpacing, batch.KindOverlap, batch.KindName}

// =============================================================================
// BatchModel - Interactive annotation browser
// =============================================================================

// BatchModel is the bubbletea model behind `redline inspect`.
type BatchModel struct {
	Batch  *batch.Batch
	Items  []batch.Annotation
	Filter batch.Kind
	Cursor int
	Offset int
	Height int
	Detail bool
}

// NewBatchModel creates a browser over all annotations of b.
func NewBatchModel(b *batch.Batch) BatchModel {
	m := BatchModel{Batch: b, Height: 15}
	m.applyFilter("")
	return m
}

func (m *BatchModel) applyFilter(k batch.Kind) {
	m.Filter = k
	m.Items = lo.Filter(m.Batch.Annotations, func(a batch.Annotation, _ int) bool {
		return k == "" || a.Kind == k
	})
	m.Cursor, m.Offset = 0, 0
}

// Selected returns the annotation under the cursor.
func (m BatchModel) Selected() (batch.Annotation, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return batch.Annotation{}, false
	}
	return m.Items[m.Cursor], true
}

func (m BatchModel) Init() tea.Cmd {
	return nil
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Detail {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			i := lo.IndexOf(filterCycle, m.Filter)
			m.applyFilter(filterCycle[(i+1)%len(filterCycle)])
			m.Detail = false
		case "enter":
			if len(m.Items) > 0 {
				m.Detail = !m.Detail
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Batch " + m.Batch.ID))
	b.WriteString("\n")
	filter := "all"
	if m.Filter != "" {
		filter = string(m.Filter)
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  ⏎ details  ⇥ filter (%s)  q quit", filter)))
	b.WriteString("\n\n")

	if m.Detail {
		if a, ok := m.Selected(); ok {
			b.WriteString(m.detailView(a))
			return b.String()
		}
	}

	if len(m.Items) == 0 {
		b.WriteString(listDimStyle.Render("  no annotations"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.tableView())
		b.WriteString("\n\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))
	}

	if n := len(m.Batch.Skipped); n > 0 {
		b.WriteString("  ")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%d skipped", n)))
	}
	return b.String()
}

func (m BatchModel) tableView() string {
	end := min(m.Offset+m.Height, len(m.Items))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		a := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		side := string(a.Placed.Side)
		if a.Placed.Flipped {
			side += " ↺"
		}
		rows = append(rows, []string{cursor, frameName(m.Batch, a.FrameID), string(a.Kind), a.Label, strings.Join(a.Shapes, ", "), side})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Frame", "Kind", "Label", "Shapes", "Side").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle().Foreground(colorGray)
			if col == 2 || col == 3 {
				base = kindStyle(m.Items[idx].Kind)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})
	return t.Render()
}

func (m BatchModel) detailView(a batch.Annotation) string {
	var b strings.Builder
	line := func(k, v string) {
		b.WriteString(styleKey.Render(k) + " " + StyleValue.Render(v) + "\n")
	}

	b.WriteString(kindStyle(a.Kind).Bold(true).Render(a.Label))
	b.WriteString("\n\n")
	line("id", a.ID)
	line("kind", string(a.Kind))
	line("frame", frameName(m.Batch, a.FrameID))
	line("shapes", strings.Join(a.Shapes, ", "))
	line("target", formatBox(a.Target))
	line("glyph", formatBox(a.Placed.Box))
	side := string(a.Placed.Side)
	if a.Placed.Flipped {
		side += " (requested " + string(a.Placed.Requested) + ")"
	}
	line("side", side)
	line("pointer", fmt.Sprintf("%s,%s %s", label.Number(a.Placed.Pointer.X), label.Number(a.Placed.Pointer.Y), a.Placed.Pointer.Direction))
	if a.Placed.Clamped {
		line("clamped", "yes")
	}
	if a.Line != nil {
		line("line", fmt.Sprintf("%s,%s → %s,%s", label.Number(a.Line.X1), label.Number(a.Line.Y1), label.Number(a.Line.X2), label.Number(a.Line.Y2)))
	}
	if a.Gap != nil {
		line("gap", fmt.Sprintf("%s %s", a.Gap.Orientation, label.Spacing(a.Gap.Distance())))
	}
	if a.Region != nil {
		line("region", fmt.Sprintf("%s %s", a.Region.Side, formatBox(a.Region.Box)))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back"))
	return b.String()
}

// frameName returns the frame's display name, falling back to its id.
func frameName(b *batch.Batch, id string) string {
	if f, ok := b.Frame(id); ok && f.Name != "" {
		return f.Name
	}
	return id
}
