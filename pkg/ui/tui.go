package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/prediction-arb/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseStartup   Phase = "startup"
	PhaseDashboard Phase = "dashboard"
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

var startupOrder = []string{"config", "source", "detector"}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	opportunities *components.OpportunitiesComponent
	stats         *components.StatsComponent
	sources       *components.StatusComponent
	keys          KeyMap
	help          help.Model

	phase        Phase
	welcomeStart time.Time
	startupTime  time.Time
	startupSteps map[string]*StartupStep

	quitting   bool
	paused     bool
	width      int
	height     int
	lastCycle  time.Time
	lastSource string
	errors     []ErrorEntry // last 3
	activity   []string     // last 6
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		opportunities: components.NewOpportunitiesComponent(50),
		stats:         components.NewStatsComponent(),
		sources:       components.NewStatusComponent(),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		phase:         PhaseWelcome,
		welcomeStart:  now,
		startupTime:   now,
		startupSteps: map[string]*StartupStep{
			"config":   {Name: "Loading configuration", Status: "pending"},
			"source":   {Name: "Fetching market listings", Status: "pending"},
			"detector": {Name: "Starting detector", Status: "pending"},
		},
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m *Model) enterStartup() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Send must not be called from inside Update.
	if OnStartModules != nil {
		go OnStartModules()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.phase == PhaseWelcome {
			m.enterStartup()
			return m, tickCmd()
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.opportunities.Clear()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.opportunities.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.opportunities.ScrollDown()
		case key.Matches(msg, m.keys.Errors):
			m.errors = nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.enterStartup()
		}
		return m, tickCmd()

	case CycleMsg:
		m.stats.Update(withErrors(msg.Stats, m.stats.Stats().Errors))
		m.lastCycle = msg.At
		m.lastSource = msg.Source
		if !m.paused {
			m.opportunities.Set(msg.Opportunities)
		}
		m.activity = addActivity(m.activity, fmt.Sprintf("%s: %d records, %d opportunities",
			msg.Source, msg.Stats.Records, len(msg.Opportunities)))
		m.markStep("detector", "connected")
		m.phase = PhaseDashboard

	case SourceStatusMsg:
		m.sources.Update(components.SourceStatus{
			Name:       msg.Name,
			Healthy:    msg.Healthy,
			Latency:    msg.Latency,
			LastUpdate: time.Now(),
		})
		if msg.Healthy {
			m.markStep("source", "connected")
		} else {
			m.markStep("source", "failed")
		}

	case ErrorMsg:
		m.stats.IncErrors()
		m.errors = append(m.errors, ErrorEntry{Message: msg.Error.Error(), Timestamp: time.Now()})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.activity = addActivity(m.activity, msg.Level+": "+msg.Message)

	case StartupMsg:
		m.markStep(msg.Step, msg.Status)
	}

	return m, nil
}

func (m *Model) markStep(step, status string) {
	if s, ok := m.startupSteps[step]; ok {
		s.Status = status
	}
}

func withErrors(s components.Stats, errors int64) components.Stats {
	s.Errors = errors
	return s
}

// addActivity appends a timestamped line and keeps the last 6.
func addActivity(feed []string, message string) []string {
	feed = append(feed, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message))
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" Prediction Market Arbitrage "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	width := m.width - 4
	if width < 40 {
		width = 110
	}
	visible := m.height - 20
	if visible < 5 {
		visible = 10
	}

	b.WriteString(BoxStyle.Width(width).Render(m.stats.View()))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Width(width).Render(m.opportunities.View(visible)))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Width(width).Render(m.renderActivityFeed()))
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(DangerStyle.Bold(true).Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(DangerStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(WarningStyle.Bold(true).Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderActivityFeed() string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("ACTIVITY"))
	sb.WriteString("\n")
	if len(m.activity) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting for the first cycle..."))
		return sb.String()
	}
	for _, line := range m.activity {
		sb.WriteString(MutedValue.Render("  " + line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderWelcomeScreen() string {
	dots := strings.Repeat(".", int(time.Since(m.welcomeStart).Milliseconds()/300)%4)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	sb.WriteString(HeaderStyle.Render("          P R E D I C T I O N   M A R K E T   A R B"))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("     cross-venue YES/NO scanner for binary event contracts"))
	sb.WriteString("\n\n\n")
	sb.WriteString(SuccessStyle.Render(fmt.Sprintf("                  Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("            Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderStartupScreen() string {
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(HeaderStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	spinners := []string{"◐", "◓", "◑", "◒"}
	for _, k := range startupOrder {
		step := m.startupSteps[k]

		var icon, text string
		var style lipgloss.Style
		switch step.Status {
		case "connected", "done":
			icon, text, style = "✓", "Ready", SuccessStyle
		case "connecting":
			icon = spinners[int(time.Since(m.startupTime).Milliseconds()/200)%len(spinners)]
			text, style = "Working...", WarningStyle
		case "failed":
			icon, text, style = "✗", "Failed", DangerStyle
		default:
			icon, text, style = "○", "Pending", MutedValue
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n", style.Render(icon), MutedValue.Render(step.Name), style.Render(text)))
	}

	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", time.Since(m.startupTime).Round(time.Second))))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderStatusBar() string {
	parts := []string{m.sources.View()}
	if !m.lastCycle.IsZero() {
		ago := time.Since(m.lastCycle).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Last cycle: %s ago", ago)))
	}
	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules
// should start. main sets it.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
