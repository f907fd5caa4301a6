package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mamatimer/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line, trimmed.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

// Command describes one palette entry. The app model owns the dispatch.
type Command struct {
	Name string
	Args string
	Help string
}

// Commands lists every palette entry in display order.
var Commands = []Command{
	{Name: "fetal:start", Help: "start a one-hour counting session"},
	{Name: "fetal:tap", Help: "record a movement"},
	{Name: "fetal:end", Help: "end the session early and save it"},
	{Name: "contraction:start", Help: "start timing a contraction"},
	{Name: "contraction:stop", Help: "stop timing and save"},
	{Name: "history:export", Args: "[YYYY-MM-DD] [all|fetal|contraction]", Help: "write the day note"},
	{Name: "history:kind", Help: "switch the history filter"},
}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Pink).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().Foreground(theme.Lavender)
	helpStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is the ":" overlay. Up recalls the last submitted line.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	last    string
}

// NewPalette creates a hidden palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "fetal:tap"
	ti.CharLimit = 128
	return Palette{input: ti}
}

// Visible reports whether the palette is shown.
func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

// SetWidth sets the render width of the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "up":
			if p.last != "" {
				p.input.SetValue(p.last)
				p.input.CursorEnd()
			}
			return p, nil
		case "tab":
			if found := p.matching(2); len(found) == 1 {
				p.input.SetValue(found[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "enter":
			line := strings.TrimSpace(p.input.Value())
			if line != "" {
				p.last = line
			}
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if found := p.matching(5); len(found) > 0 {
		sb.WriteString("\n")
		for _, c := range found {
			line := nameStyle.Render(c.Name)
			if c.Args != "" {
				line += " " + helpStyle.Render(c.Args)
			}
			sb.WriteString("  " + line + "  " + helpStyle.Render(c.Help) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// matching compares only the first typed word, so typed arguments keep the hint.
func (p Palette) matching(limit int) []Command {
	typed := strings.Fields(strings.ToLower(p.input.Value()))
	var out []Command
	for _, c := range Commands {
		if len(typed) == 0 || strings.HasPrefix(c.Name, typed[0]) {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
