package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/Dicklesworthstone/hwinfo/internal/controller"
	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

// Controller is the part of controller.Controller the view drives.
type Controller interface {
	State() controller.State
	Activate(ctx context.Context) error
	Deactivate()
}

// Feed is where published summaries are read from.
type Feed interface {
	Latest() (model.Summary, uint64)
}

// Model renders the most recent summary in a read-only scrollable area.
// The view is the surface's lifecycle owner: it activates the controller
// on start, deactivates it on pause and on quit.
type Model struct {
	ctrl   Controller
	feed   Feed
	ctx    context.Context
	log    zerolog.Logger
	view   viewport.Model
	latest model.Summary
	seq    uint64
	err    error
	width  int
	height int
}

func New(ctx context.Context, ctrl Controller, feed Feed, log zerolog.Logger) *Model {
	vp := viewport.New(80, 16)
	return &Model{
		ctrl:   ctrl,
		feed:   feed,
		ctx:    ctx,
		log:    log.With().Str("component", "ui").Logger(),
		view:   vp,
		width:  80,
		height: 20,
	}
}

// Messages
type (
	tickMsg   struct{}
	toggleMsg struct{ err error }
)

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.activate(), tickCmd())
}

func (m *Model) activate() tea.Cmd {
	return func() tea.Msg {
		return toggleMsg{err: m.ctrl.Activate(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.view.Width = max(msg.Width-4, 20)
		m.view.Height = max(msg.Height-5, 3)
		m.view.SetContent(m.body())
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctrl.Deactivate()
			return m, tea.Quit
		case " ", "p":
			if m.ctrl.State() == controller.Active {
				m.ctrl.Deactivate()
				return m, nil
			}
			return m, m.activate()
		}
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	case toggleMsg:
		m.err = msg.err
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("activate")
		}
	case tickMsg:
		if s, seq := m.feed.Latest(); seq != m.seq {
			m.latest, m.seq = s, seq
			m.view.SetContent(m.body())
		}
		return m, tickCmd()
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)

func (m *Model) View() string {
	stamp := "waiting for first refresh"
	if m.seq > 0 {
		stamp = m.latest.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")
	}
	state := subtleStyle.Render(m.ctrl.State().String())
	if m.ctrl.State() != controller.Active {
		state = pausedStyle.Render("paused")
	}
	header := titleStyle.Render("Hardware Info") + "  " + state + "  " + subtleStyle.Render(stamp)

	footer := subtleStyle.Render("q quit · space pause/resume · ↑/↓ scroll")
	if m.err != nil {
		footer = pausedStyle.Render(m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, cardStyle.Render(m.view.View()), footer)
}

// body lays the summary out as aligned "Label: value" rows.
func (m *Model) body() string {
	if len(m.latest.Values) == 0 {
		return ""
	}
	width := 0
	for _, fv := range m.latest.Values {
		width = max(width, len(fv.Field.Label()))
	}
	var b strings.Builder
	for _, fv := range m.latest.Values {
		label := fmt.Sprintf("%-*s", width+1, fv.Field.Label()+":")
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label), truncate(fv.Value, m.view.Width-width-2))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunTUI starts the Bubble Tea program. The controller is left inactive on return.
func RunTUI(ctx context.Context, ctrl Controller, feed Feed, log zerolog.Logger) error {
	prog := tea.NewProgram(New(ctx, ctrl, feed, log), tea.WithAltScreen())
	_, err := prog.Run()
	ctrl.Deactivate()
	return err
}
