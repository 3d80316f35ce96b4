package monitor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/picoprov/internal/agent"
	"github.com/muurk/picoprov/internal/radiosim"
)

// Run starts the dashboard and blocks until the user quits.
func Run(a *agent.Agent, radio *radiosim.Radio, button *radiosim.Button) error {
	p := tea.NewProgram(NewModel(a, radio, button), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
