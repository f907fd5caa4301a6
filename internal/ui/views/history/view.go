package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	historydto "mamatimer/internal/modules/history/dto"
	"mamatimer/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	List(ctx context.Context, kind string) ([]historydto.DayOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type DaysLoadedMsg struct {
	Days []historydto.DayOutput
	Err  error
}

// ─── list item ───────────────────────────────────────────────────────────────

type dayItem struct {
	day historydto.DayOutput
}

func (i dayItem) Title() string { return i.day.Key }

func (i dayItem) Description() string {
	var parts []string
	if f := i.day.Fetal; f != nil {
		parts = append(parts, fmt.Sprintf("%d sessions, %d movements", f.Stats.SessionCount, f.Stats.TotalValidCount))
	}
	if c := i.day.Contraction; c != nil {
		parts = append(parts, fmt.Sprintf("%d contractions", c.Stats.TotalCount))
	}
	return strings.Join(parts, "  ·  ")
}

func (i dayItem) FilterValue() string { return i.day.Key }

var kinds = []string{"all", "fetal", "contraction"}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     HistoryPort
	list     list.Model
	detail   viewport.Model
	renderer *glamour.TermRenderer
	kindIdx  int
	err      error
	width    int
	height   int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	return Model{port: port, list: l, detail: vp, renderer: newRenderer(0)}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Refresh() tea.Cmd {
	if m.port == nil {
		return nil
	}
	kind := kinds[m.kindIdx]
	return func() tea.Msg {
		days, err := m.port.List(context.Background(), kind)
		return DaysLoadedMsg{Days: days, Err: err}
	}
}

// CycleKind switches between all, fetal-only and contraction-only history.
func (m *Model) CycleKind() tea.Cmd {
	m.kindIdx = (m.kindIdx + 1) % len(kinds)
	m.list.Title = "History (" + kinds[m.kindIdx] + ")"
	return m.Refresh()
}

func (m Model) Kind() string { return kinds[m.kindIdx] }

// SelectedDay returns the selected day key, if any.
func (m Model) SelectedDay() (string, bool) {
	if item, ok := m.list.SelectedItem().(dayItem); ok {
		return item.day.Key, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	case DaysLoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			items := make([]list.Item, len(msg.Days))
			for i, d := range msg.Days {
				items[i] = dayItem{day: d}
			}
			cmds = append(cmds, m.list.SetItems(items))
		}
	}

	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	m.detail.SetContent(m.renderDetail())

	var vCmd tea.Cmd
	m.detail, vCmd = m.detail.Update(msg)
	cmds = append(cmds, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(10, detailW-2)).
		Height(max(1, m.height-2)).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	m.list.SetSize(listW, m.height)
	m.detail.Width = max(10, m.width-listW-4)
	m.detail.Height = max(1, m.height-4)
	if r := newRenderer(m.detail.Width - 2); r != nil {
		m.renderer = r
	}
}

// newRenderer returns nil when glamour cannot build its style; the detail
// pane then shows the raw markdown.
func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(0, width)),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) renderDetail() string {
	if m.err != nil {
		return theme.Warn.Render(m.err.Error())
	}
	item, ok := m.list.SelectedItem().(dayItem)
	if !ok {
		return theme.Muted.Render("No history yet.")
	}
	body := item.day.Markdown
	if m.renderer != nil {
		if out, err := m.renderer.Render(body); err == nil {
			body = out
		}
	}
	return body + "\n" + theme.Muted.Render("x: export day note  c: switch kind")
}
