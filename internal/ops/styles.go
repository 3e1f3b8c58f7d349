package ops

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal styling for help, status tables and log level tags. lipgloss
// downgrades to plain text when the terminal has no color support.
var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	styleErr   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func levelTag(lvl string) string {
	up := strings.ToUpper(lvl)
	switch strings.ToLower(lvl) {
	case "debug":
		return styleMuted.Render(up)
	case "warn", "warning":
		return styleWarn.Render(up)
	case "error", "err":
		return styleErr.Render(up)
	default:
		return up
	}
}

// renderState colors a container state the way docker ps users expect.
func renderState(state string) string {
	switch strings.ToLower(state) {
	case "running":
		return styleOK.Render(state)
	case "exited", "dead":
		return styleErr.Render(state)
	default:
		return styleWarn.Render(state)
	}
}
