package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/picoprov/internal/agent"
	"github.com/muurk/picoprov/internal/conn"
	"github.com/muurk/picoprov/internal/radiosim"
)

const (
	pollInterval = 300 * time.Millisecond

	// Simulated button hold times. The long press comfortably exceeds the
	// manager's factory-reset threshold.
	shortPressHold = 500 * time.Millisecond
	longPressHold  = 3500 * time.Millisecond

	maxEventLines = 6
)

type pollMsg time.Time

type releaseButtonMsg struct{}

// keyMap defines the dashboard key bindings
type keyMap struct {
	DropLink  key.Binding
	Fault     key.Binding
	Press     key.Binding
	LongPress key.Binding
	Portal    key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.DropLink, k.Fault, k.Press, k.LongPress, k.Portal, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.DropLink, k.Fault, k.Press},
		{k.LongPress, k.Portal, k.Quit},
	}
}

// snapshot is one polled view of the agent state.
type snapshot struct {
	status     conn.Status
	configMode bool
	attempts   int
	uptime     time.Duration
	portalPort int
	hasCreds   bool
	ssid       string
	signal     int
	joined     bool
}

// Model is the dashboard's bubbletea model.
type Model struct {
	agent  *agent.Agent
	radio  *radiosim.Radio
	button *radiosim.Button

	snap       snapshot
	events     []string
	buttonHeld bool
	spin       spinner.Model
	help       help.Model
	keys       keyMap
	width      int
	quitting   bool
}

// NewModel creates a dashboard over the given agent and simulated inputs.
func NewModel(a *agent.Agent, radio *radiosim.Radio, button *radiosim.Button) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = BusyStyle

	keys := keyMap{
		DropLink: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "drop link"),
		),
		Fault: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "inject fault"),
		),
		Press: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "button press"),
		),
		LongPress: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "long press (reset)"),
		),
		Portal: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "start portal"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	return Model{
		agent:  a,
		radio:  radio,
		button: button,
		spin:   s,
		help:   help.New(),
		keys:   keys,
		width:  GetTerminalWidth(),
	}
}

// Init starts the poll loop and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.spin.Tick)
}

func (m Model) poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m Model) takeSnapshot() snapshot {
	link := m.radio.Status()
	return snapshot{
		status:     m.agent.Status(),
		configMode: m.agent.IsConfigMode(),
		attempts:   m.agent.ReconnectAttempts(),
		uptime:     m.agent.Uptime(),
		portalPort: m.agent.PortalPort(),
		hasCreds:   m.agent.Vault().HasWiFiCredentials(),
		ssid:       m.radio.Joined(),
		signal:     link.Signal,
		joined:     link.Joined,
	}
}

func (m *Model) logEvent(format string, args ...interface{}) {
	line := fmt.Sprintf("%s  %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	m.events = append(m.events, line)
	if len(m.events) > maxEventLines {
		m.events = m.events[len(m.events)-maxEventLines:]
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}
		return m, nil

	case pollMsg:
		m.snap = m.takeSnapshot()
		return m, m.poll()

	case releaseButtonMsg:
		m.button.Release()
		m.buttonHeld = false
		m.logEvent("button released")
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.DropLink):
			m.radio.DropLink()
			m.logEvent("link dropped")
			return m, nil

		case key.Matches(msg, m.keys.Fault):
			m.radio.InjectFault("injected from monitor")
			m.logEvent("radio fault armed for next join")
			return m, nil

		case key.Matches(msg, m.keys.Press):
			return m.holdButton(shortPressHold, "short press")

		case key.Matches(msg, m.keys.LongPress):
			return m.holdButton(longPressHold, "long press")

		case key.Matches(msg, m.keys.Portal):
			if err := m.agent.StartPortal(); err != nil {
				m.logEvent("portal start failed: %v", err)
			} else {
				m.logEvent("portal start requested")
			}
			return m, nil
		}
	}

	return m, nil
}

func (m Model) holdButton(hold time.Duration, label string) (tea.Model, tea.Cmd) {
	if m.button == nil || m.buttonHeld {
		return m, nil
	}
	m.button.Press()
	m.buttonHeld = true
	m.logEvent("button %s (%s hold)", label, hold)
	return m, tea.Tick(hold, func(time.Time) tea.Msg {
		return releaseButtonMsg{}
	})
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("PicoProv Agent Monitor"))
	b.WriteString("\n\n")

	b.WriteString(KeyStyle.Render("Status:"))
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("LED:"))
	b.WriteString(ValueStyle.Render(renderLED(m.snap.status)))
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Network:"))
	if m.snap.joined {
		b.WriteString(ValueStyle.Render(fmt.Sprintf("%s (%d dBm)", m.snap.ssid, m.snap.signal)))
	} else {
		b.WriteString(OfflineStyle.Render("none"))
	}
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Credentials:"))
	if m.snap.hasCreds {
		b.WriteString(ValueStyle.Render("stored"))
	} else {
		b.WriteString(OfflineStyle.Render("none"))
	}
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Attempts:"))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%d", m.snap.attempts)))
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Uptime:"))
	b.WriteString(ValueStyle.Render(m.snap.uptime.Round(time.Second).String()))
	b.WriteString("\n")

	b.WriteString(KeyStyle.Render("Portal:"))
	if m.snap.portalPort != 0 {
		b.WriteString(BusyStyle.Render(fmt.Sprintf("http://localhost:%d", m.snap.portalPort)))
	} else {
		b.WriteString(OfflineStyle.Render("inactive"))
	}
	b.WriteString("\n")

	if m.buttonHeld {
		b.WriteString("\n")
		b.WriteString(BusyStyle.Render("  [button held]"))
		b.WriteString("\n")
	}

	if len(m.events) > 0 {
		b.WriteString("\n")
		for _, e := range m.events {
			b.WriteString(EventStyle.Render(e))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return BoxStyle(m.width).Render(b.String()) + "\n"
}

func (m Model) renderStatus() string {
	s := m.snap.status
	switch s {
	case conn.StatusConnected:
		return ConnectedStyle.Render(s.String())
	case conn.StatusConnecting, conn.StatusConfigMode:
		return BusyStyle.Render(m.spin.View() + s.String())
	case conn.StatusError:
		return ErrorStyle.Render(s.String())
	default:
		return OfflineStyle.Render(s.String())
	}
}

// renderLED describes the LED indication for a status in words.
func renderLED(s conn.Status) string {
	p := s.LEDPattern()
	switch p.Mode {
	case conn.LEDOn:
		return "solid"
	case conn.LEDBlink:
		return fmt.Sprintf("blinking every %s", p.Interval)
	default:
		return "off"
	}
}
