package monitor

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the monitor dashboard
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - connected
	ErrorColor   = lipgloss.Color("#FF5555") // Red - error state
	WarningColor = lipgloss.Color("#FFA500") // Orange - connecting, config mode
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60 // Minimum supported terminal width
	MaxContentWidth  = 90 // Maximum content width before capping
)

var (
	// TitleStyle is for the dashboard header
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(2)

	// KeyStyle is for field labels (e.g., "Status:")
	KeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(16).
			PaddingLeft(2)

	// ValueStyle is for field values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// ConnectedStyle renders the Connected state
	ConnectedStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	// BusyStyle renders transitional states (Connecting, Config Mode)
	BusyStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle renders the Error state
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// OfflineStyle renders the Disconnected state
	OfflineStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// EventStyle is for the recent event log lines
	EventStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)
)

// BoxStyle returns the border style for the dashboard frame
func BoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
