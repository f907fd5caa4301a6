package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	contractiondto "mamatimer/internal/modules/contraction/dto"
	fetaldto "mamatimer/internal/modules/fetal/dto"
	historydto "mamatimer/internal/modules/history/dto"
	"mamatimer/internal/platform/calendar"
	"mamatimer/internal/platform/format"
	"mamatimer/internal/platform/notify"
	"mamatimer/internal/ui/components"
	"mamatimer/internal/ui/theme"
	contractionview "mamatimer/internal/ui/views/contraction"
	fetalview "mamatimer/internal/ui/views/fetal"
	historyview "mamatimer/internal/ui/views/history"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type fetalPort interface {
	Start(ctx context.Context) (fetaldto.StartOutput, error)
	Tap(ctx context.Context) (fetaldto.MovementOutput, error)
	End(ctx context.Context) (fetaldto.EndOutput, error)
	Status(ctx context.Context) (fetaldto.StatusOutput, error)
	Day(ctx context.Context, day time.Time) (fetaldto.DayOutput, error)
}

type contractionPort interface {
	Start(ctx context.Context) (contractiondto.StartOutput, error)
	Stop(ctx context.Context) (contractiondto.StopOutput, error)
	Status(ctx context.Context) (contractiondto.StatusOutput, error)
	Day(ctx context.Context, day time.Time) (contractiondto.DayOutput, error)
}

type historyPort interface {
	List(ctx context.Context, kind string) ([]historydto.DayOutput, error)
	Export(ctx context.Context, day time.Time, kind string) (historydto.ExportOutput, error)
}

// notificationSource is drained once per second; nil disables feedback.
type notificationSource interface {
	Drain() []notify.Event
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabFetal tabID = iota
	tabContraction
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Kicks", "Contractions", "History"}

// ─── async messages ──────────────────────────────────────────────────────────

type tickMsg time.Time

type actionDoneMsg struct {
	status         string
	err            error
	refreshHistory bool
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Action  key.Binding
	End     key.Binding
	Export  key.Binding
	Kind    key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Action:  key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "start / tap / stop")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end kick session")),
		Export:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export day note")),
		Kind:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle history kind")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Action, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Action, k.End},
		{k.Export, k.Kind},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

type Options struct {
	Location      *time.Location
	SessionLength time.Duration
	CoolDown      time.Duration
}

// Model is the root Bubble Tea model. The timers run inside the usecases; the
// model only polls them once per second and forwards user actions.
type Model struct {
	fetal         fetalPort
	contraction   contractionPort
	history       historyPort
	notifications notificationSource
	loc           *time.Location

	fetalView       fetalview.Model
	contractionView contractionview.Model
	historyView     historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	pulse     int
	width     int
	height    int
}

func NewModel(fetal fetalPort, contraction contractionPort, history historyPort, notifications notificationSource, opts Options) Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return Model{
		fetal:           fetal,
		contraction:     contraction,
		history:         history,
		notifications:   notifications,
		loc:             opts.Location,
		fetalView:       fetalview.New(fetal, opts.SessionLength, opts.CoolDown),
		contractionView: contractionview.New(contraction),
		historyView:     historyview.New(history),
		activeTab:       tabFetal,
		keys:            defaultKeys(),
		help:            help.New(),
		palette:         components.NewPalette(),
		status:          "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetalView.Init(),
		m.contractionView.Init(),
		m.historyView.Init(),
		tickCmd(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		if _, ok := msg.(tickMsg); !ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case tickMsg:
		m.drainNotifications()
		return m, tea.Batch(m.fetalView.Refresh(), m.contractionView.Refresh(), tickCmd())

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else if msg.status != "" {
			m.status = msg.status
		}
		m.drainNotifications()
		cmds = append(cmds, m.fetalView.Refresh(), m.contractionView.Refresh())
		if msg.refreshHistory {
			cmds = append(cmds, m.historyView.Refresh())
		}
		return m, tea.Batch(cmds...)

	case fetalview.StatusLoadedMsg, fetalview.DayLoadedMsg:
		var cmd tea.Cmd
		m.fetalView, cmd = m.fetalView.Update(msg)
		return m, cmd

	case contractionview.StatusLoadedMsg, contractionview.DayLoadedMsg:
		var cmd tea.Cmd
		m.contractionView, cmd = m.contractionView.Update(msg)
		return m, cmd

	case historyview.DaysLoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabHistory && m.historyView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case " ", "enter":
			switch m.activeTab {
			case tabFetal:
				if m.fetalView.Active() {
					return m, m.tapCmd()
				}
				return m, m.startFetalCmd()
			case tabContraction:
				if m.contractionView.Active() {
					return m, m.stopContractionCmd()
				}
				return m, m.startContractionCmd()
			}
		case "e":
			if m.activeTab == tabFetal {
				return m, m.endFetalCmd()
			}
		case "x":
			if m.activeTab == tabHistory {
				if dayKey, ok := m.historyView.SelectedDay(); ok {
					return m, m.exportCmd(dayKey, m.historyView.Kind())
				}
				m.status = "no day selected"
				return m, nil
			}
		case "c":
			if m.activeTab == tabHistory {
				return m, m.historyView.CycleKind()
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabContraction:
		m.contractionView, tabCmd = m.contractionView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabFetal:
		return m.fetalView.View()
	case tabContraction:
		return m.contractionView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	bar := "mamatimer  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.pulse > 0 {
		left = theme.Pulse.Render(" ◉ ") + " " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  space:action  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "fetal:start":
		m.activeTab = tabFetal
		return m, m.startFetalCmd()
	case "fetal:tap":
		m.activeTab = tabFetal
		return m, m.tapCmd()
	case "fetal:end":
		m.activeTab = tabFetal
		return m, m.endFetalCmd()
	case "contraction:start":
		m.activeTab = tabContraction
		return m, m.startContractionCmd()
	case "contraction:stop":
		m.activeTab = tabContraction
		return m, m.stopContractionCmd()
	case "history:export":
		dayKey := calendar.Key(time.Now(), m.loc)
		if len(parts) >= 2 {
			dayKey = parts[1]
		}
		kind := "all"
		if len(parts) >= 3 {
			kind = parts[2]
		}
		return m, m.exportCmd(dayKey, kind)
	case "history:kind":
		m.activeTab = tabHistory
		return m, m.historyView.CycleKind()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.fetalView, _ = m.fetalView.Update(sz)
	m.contractionView, _ = m.contractionView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

func (m *Model) drainNotifications() {
	if m.pulse > 0 {
		m.pulse--
	}
	if m.notifications == nil {
		return
	}
	for _, e := range m.notifications.Drain() {
		switch e.Kind {
		case notify.EventVibrate:
			m.pulse = 2
		case notify.EventToast:
			m.status = e.Message
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) startFetalCmd() tea.Cmd {
	return func() tea.Msg {
		if m.fetal == nil {
			return actionDoneMsg{err: fmt.Errorf("fetal tracker not configured")}
		}
		out, err := m.fetal.Start(context.Background())
		return actionDoneMsg{status: "counting until " + out.StartedAt.Add(time.Duration(out.RemainingSeconds)*time.Second).In(m.loc).Format("15:04"), err: err}
	}
}

func (m Model) tapCmd() tea.Cmd {
	return func() tea.Msg {
		if m.fetal == nil {
			return actionDoneMsg{err: fmt.Errorf("fetal tracker not configured")}
		}
		out, err := m.fetal.Tap(context.Background())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if out.Valid {
			return actionDoneMsg{status: fmt.Sprintf("movement %d counted", out.ValidCount)}
		}
		return actionDoneMsg{status: "within 5 minutes of the last movement, noted as a click"}
	}
}

func (m Model) endFetalCmd() tea.Cmd {
	return func() tea.Msg {
		if m.fetal == nil {
			return actionDoneMsg{err: fmt.Errorf("fetal tracker not configured")}
		}
		out, err := m.fetal.End(context.Background())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if !out.Ended {
			return actionDoneMsg{status: "no counting session running"}
		}
		return actionDoneMsg{status: fmt.Sprintf("session saved: %d movements", out.Record.ValidCount), refreshHistory: true}
	}
}

func (m Model) startContractionCmd() tea.Cmd {
	return func() tea.Msg {
		if m.contraction == nil {
			return actionDoneMsg{err: fmt.Errorf("contraction timer not configured")}
		}
		_, err := m.contraction.Start(context.Background())
		return actionDoneMsg{status: "contraction started", err: err}
	}
}

func (m Model) stopContractionCmd() tea.Cmd {
	return func() tea.Msg {
		if m.contraction == nil {
			return actionDoneMsg{err: fmt.Errorf("contraction timer not configured")}
		}
		out, err := m.contraction.Stop(context.Background())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if !out.Stopped {
			return actionDoneMsg{status: "no contraction running"}
		}
		status := "contraction " + format.Clock(out.Record.DurationSeconds)
		if out.Record.IsLabor {
			status += ", under 5 minutes since the last one"
		}
		return actionDoneMsg{status: status, refreshHistory: true}
	}
}

func (m Model) exportCmd(dayKey, kind string) tea.Cmd {
	loc := m.loc
	return func() tea.Msg {
		if m.history == nil {
			return actionDoneMsg{err: fmt.Errorf("history not configured")}
		}
		day, err := calendar.ParseDay(dayKey, loc)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		out, err := m.history.Export(context.Background(), day, kind)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "exported " + out.Path}
	}
}
