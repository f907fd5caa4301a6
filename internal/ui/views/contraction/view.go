package contraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	contractiondto "mamatimer/internal/modules/contraction/dto"
	"mamatimer/internal/platform/format"
	"mamatimer/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ContractionPort interface {
	Status(ctx context.Context) (contractiondto.StatusOutput, error)
	Day(ctx context.Context, day time.Time) (contractiondto.DayOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type StatusLoadedMsg struct {
	Status contractiondto.StatusOutput
	Err    error
}

type DayLoadedMsg struct {
	Day contractiondto.DayOutput
	Err error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   ContractionPort
	status contractiondto.StatusOutput
	today  contractiondto.DayOutput
	table  table.Model
	err    error
	width  int
	height int
}

func New(port ContractionPort) Model {
	t := table.New(
		table.WithColumns(columns(60)),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(theme.Sapphire).BorderForeground(theme.Surface1).Bold(true)
	styles.Selected = styles.Selected.Foreground(theme.Base).Background(theme.Lavender)
	t.SetStyles(styles)
	return Model{port: port, table: t}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Refresh() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return tea.Batch(m.loadStatusCmd(), m.loadDayCmd())
}

func (m Model) Active() bool { return m.status.Active }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(max(40, m.width-8)))
		m.table.SetHeight(max(3, m.height-14))
	case StatusLoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.status = msg.Status
		}
	case DayLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			break
		}
		m.today = msg.Day
		m.table.SetRows(rows(msg.Day.Records))
	case tea.KeyMsg:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Contraction timer") + "\n\n")
	if m.status.Active {
		sb.WriteString(theme.Big.Render(format.Clock(m.status.ElapsedSeconds)) + "  " + theme.Hot.Render("● recording") + "\n")
		sb.WriteString(theme.Muted.Render("space: stop") + "\n\n")
	} else {
		sb.WriteString(theme.Big.Render(format.Clock(0)) + "\n")
		sb.WriteString(theme.Muted.Render("space: start a contraction") + "\n\n")
	}

	stats := m.today.Stats
	sb.WriteString(fmt.Sprintf("%s %d   %s %s   %s %s",
		theme.Muted.Render("today"), stats.TotalCount,
		theme.Muted.Render("avg duration"), format.Clock(stats.AvgDuration),
		theme.Muted.Render("avg interval"), format.Interval(stats.AvgInterval)))
	if stats.LaborCount > 0 {
		sb.WriteString("   " + theme.Warn.Render(fmt.Sprintf("%d under 5 min apart", stats.LaborCount)))
	}
	sb.WriteString("\n\n")
	if len(m.today.Records) == 0 {
		sb.WriteString(theme.Muted.Render("No contractions recorded today."))
	} else {
		sb.WriteString(m.table.View())
	}
	if m.err != nil {
		sb.WriteString("\n" + theme.Warn.Render(m.err.Error()))
	}
	return theme.Pane.Width(max(40, m.width-4)).Render(sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func columns(width int) []table.Column {
	w := (width - 8) / 4
	return []table.Column{
		{Title: "Start", Width: w},
		{Title: "Duration", Width: w},
		{Title: "Interval", Width: w},
		{Title: "Labor", Width: w},
	}
}

// rows lists newest first, the way the day reads on a phone.
func rows(records []contractiondto.RecordOutput) []table.Row {
	out := make([]table.Row, 0, len(records))
	for idx := len(records) - 1; idx >= 0; idx-- {
		r := records[idx]
		interval := format.Interval(r.IntervalSeconds)
		if r.ShowDash {
			interval = format.Dash
		}
		labor := ""
		if r.IsLabor {
			labor = "●"
		}
		out = append(out, table.Row{r.StartedAt.Format("15:04"), format.Clock(r.DurationSeconds), interval, labor})
	}
	return out
}

func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.port.Status(context.Background())
		return StatusLoadedMsg{Status: status, Err: err}
	}
}

func (m Model) loadDayCmd() tea.Cmd {
	return func() tea.Msg {
		day, err := m.port.Day(context.Background(), time.Time{})
		return DayLoadedMsg{Day: day, Err: err}
	}
}

