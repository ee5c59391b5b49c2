// Package tui provides the Bubble Tea reaction-time interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuireact/internal/experiment"
	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/report"
	statsPkg "github.com/verte-zerg/tuireact/internal/stats"
	"github.com/verte-zerg/tuireact/internal/store"
)

const (
	DefaultNeutralColor = "#1F5FBF"
	DefaultActiveColor  = "#D0312D"

	stimulusHeight = 5
)

var (
	labelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	buttonEnabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F0F0F0")).
				Bold(true).
				Padding(0, 2).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A"))
	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6E6E6E")).
				Padding(0, 2).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type keyMap struct {
	Press   key.Binding
	Quit    key.Binding
	Suspend key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Press, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Press, k.Quit, k.Suspend}}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Press: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space/enter", "press button"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q", "esc"),
			key.WithHelp("q", "quit"),
		),
		Suspend: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "suspend"),
		),
	}
}

// Model implements the Bubble Tea experiment UI and is the controller's Display.
type Model struct {
	store  *store.Store
	logger *zap.Logger
	seed   int64

	state *experiment.State
	ctrl  *experiment.Controller
	sched *teaScheduler

	keys keyMap
	help help.Model

	width  int
	height int

	startedAt time.Time
	saved     bool

	text          string
	buttonText    string
	buttonEnabled bool
	stimulus      experiment.Stimulus

	neutralStyle lipgloss.Style
	activeStyle  lipgloss.Style
}

// NewModel constructs the experiment TUI. A nil store disables saving.
func NewModel(cfg model.Config, st *store.Store, logger *zap.Logger, clock experiment.Clock, delays experiment.DelaySource, seed int64) *Model {
	neutral := cfg.NeutralColor
	if neutral == "" {
		neutral = DefaultNeutralColor
	}
	active := cfg.ActiveColor
	if active == "" {
		active = DefaultActiveColor
	}
	m := &Model{
		store:        st,
		logger:       logger,
		seed:         seed,
		sched:        newTeaScheduler(),
		keys:         defaultKeyMap(),
		help:         help.New(),
		startedAt:    time.Now(),
		neutralStyle: lipgloss.NewStyle().Background(lipgloss.Color(neutral)),
		activeStyle:  lipgloss.NewStyle().Background(lipgloss.Color(active)),
	}
	m.state = experiment.NewState(clock)
	m.ctrl = experiment.NewController(m.state, m, m.sched, report.NewLog(logger), delays)
	return m
}

// SetText implements experiment.Display.
func (m *Model) SetText(content string) {
	m.text = content
}

// SetButton implements experiment.Display.
func (m *Model) SetButton(text string, enabled bool) {
	m.buttonText = text
	m.buttonEnabled = enabled
}

// SetStimulus implements experiment.Display.
func (m *Model) SetStimulus(stimulus experiment.Stimulus) {
	m.stimulus = stimulus
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.sched.drain()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case timerFiredMsg:
		m.sched.fire(msg.id)
		return m, m.sched.drain()
	case tea.ResumeMsg:
		// Pending delays lost their meaning while suspended.
		m.logger.Info("resumed from suspend; interrupting pending timers")
		m.sched.interrupt()
		return m, m.sched.drain()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.ctrl.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Suspend):
			return m, tea.Suspend
		case key.Matches(msg, m.keys.Press):
			m.ctrl.Press()
			if m.state.Phase() == experiment.PhaseFinished {
				m.finishRun()
			}
			return m, m.sched.drain()
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.contentWidth()
	parts := []string{labelStyle.Render(wrapText(m.text, contentWidth))}
	if panel := m.renderStimulus(contentWidth); panel != "" {
		parts = append(parts, panel)
	}
	if button := m.renderButton(); button != "" {
		parts = append(parts, button)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderStimulus(width int) string {
	var style lipgloss.Style
	switch m.stimulus {
	case experiment.StimulusNeutral:
		style = m.neutralStyle
	case experiment.StimulusActive:
		style = m.activeStyle
	default:
		return ""
	}
	return style.Width(width).Height(stimulusHeight).Render("")
}

func (m *Model) renderButton() string {
	if m.buttonText == "" && !m.buttonEnabled {
		return ""
	}
	if m.buttonEnabled {
		return buttonEnabledStyle.Render(m.buttonText)
	}
	return buttonDisabledStyle.Render(m.buttonText)
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.state.Phase() == experiment.PhaseFinished {
		segments = append(segments, runSummary(experiment.Results(m.state), m.state.ErrorCount()))
	}
	segments = append(segments, m.help.View(m.keys))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func runSummary(trials []model.TrialResult, errors int) string {
	byKind := statsPkg.LatenciesByKind(trials)
	prompt := statsPkg.Summarize(byKind[model.TrialPrompt])
	color := statsPkg.Summarize(byKind[model.TrialColor])
	return fmt.Sprintf("Prompt %.0f ms · Color %.0f ms · Errors %d", prompt.MeanMs, color.MeanMs, errors)
}

func (m *Model) finishRun() {
	if m.saved {
		return
	}
	m.saved = true
	if m.store == nil {
		return
	}
	run := model.RunStats{
		StartedAt:  m.startedAt,
		EndedAt:    time.Now(),
		Seed:       m.seed,
		ErrorCount: m.state.ErrorCount(),
	}
	id, err := m.store.InsertRun(context.Background(), run, experiment.Results(m.state))
	if err != nil {
		m.logger.Error("failed to save run", zap.Error(err))
		return
	}
	m.logger.Info("run saved", zap.Int64("run_id", id))
}
