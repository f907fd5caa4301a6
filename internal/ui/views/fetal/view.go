package fetal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	fetaldto "mamatimer/internal/modules/fetal/dto"
	"mamatimer/internal/platform/format"
	"mamatimer/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type FetalPort interface {
	Status(ctx context.Context) (fetaldto.StatusOutput, error)
	Day(ctx context.Context, day time.Time) (fetaldto.DayOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type StatusLoadedMsg struct {
	Status fetaldto.StatusOutput
	Err    error
}

type DayLoadedMsg struct {
	Day fetaldto.DayOutput
	Err error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     FetalPort
	status   fetaldto.StatusOutput
	today    fetaldto.DayOutput
	bar      progress.Model
	length   int
	coolDown time.Duration
	err      error
	width    int
	height   int
}

func New(port FetalPort, sessionLength, coolDown time.Duration) Model {
	bar := progress.New(progress.WithGradient(string(theme.Peach), string(theme.Lavender)), progress.WithoutPercentage())
	return Model{
		port:     port,
		bar:      bar,
		length:   int(sessionLength / time.Second),
		coolDown: coolDown,
	}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh reloads the session status and today's records.
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
		m.bar.Width = max(10, min(m.width-8, 60))
	case StatusLoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.status = msg.Status
		}
	case DayLoadedMsg:
		if msg.Err == nil {
			m.today = msg.Day
		} else {
			m.err = msg.Err
		}
	}
	return m, nil
}

func (m Model) View() string {
	left := theme.Pane.Width(max(30, m.width/2-4)).Render(m.renderSession())
	right := theme.Pane.Width(max(30, m.width-m.width/2-4)).Render(m.renderToday())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderSession() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Fetal movement count") + "\n\n")
	if !m.status.Active {
		sb.WriteString(theme.Big.Render(format.Clock(m.length)) + "\n\n")
		sb.WriteString(theme.Muted.Render("space: start a counting session"))
		return sb.String()
	}
	sb.WriteString(theme.Big.Render(format.Clock(m.status.RemainingSeconds)) + "\n")
	elapsed := 0.0
	if m.length > 0 {
		elapsed = 1 - float64(m.status.RemainingSeconds)/float64(m.length)
	}
	sb.WriteString(m.bar.ViewAs(elapsed) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s %s   %s %d\n",
		theme.Muted.Render("movements"), theme.Hot.Render(fmt.Sprint(m.status.ValidCount)),
		theme.Muted.Render("clicks"), m.status.TotalClicks))
	if !m.status.LastValidAt.IsZero() {
		next := m.status.LastValidAt.Add(m.coolDown)
		sb.WriteString(theme.Muted.Render("counts again at ") + next.Local().Format("15:04:05") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("space: movement  e: end session"))
	if m.err != nil {
		sb.WriteString("\n" + theme.Warn.Render(m.err.Error()))
	}
	return sb.String()
}

func (m Model) renderToday() string {
	var sb strings.Builder
	stats := m.today.Stats
	sb.WriteString(theme.Title.Render("Today") + "\n\n")
	sb.WriteString(fmt.Sprintf("%s %d   %s %s   %s %d\n\n",
		theme.Muted.Render("sessions"), stats.SessionCount,
		theme.Muted.Render("avg"), format.OneDecimal(stats.AvgPerSession),
		theme.Muted.Render("12h est."), stats.Estimate12h))
	if len(m.today.Records) == 0 {
		sb.WriteString(theme.Muted.Render("No sessions yet today."))
		return sb.String()
	}
	for idx := len(m.today.Records) - 1; idx >= 0; idx-- {
		r := m.today.Records[idx]
		sb.WriteString(fmt.Sprintf("%s  %2d movements  %s\n",
			r.StartedAt.Format("15:04"), r.ValidCount, theme.Muted.Render(fmt.Sprintf("(%d clicks)", r.TotalClicks))))
	}
	return sb.String()
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
