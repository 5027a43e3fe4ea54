package commands

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	styleInfo   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // blue
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

const (
	symbolOK    = "✓"
	symbolWarn  = "⚠"
	symbolError = "✗"
	symbolInfo  = "•"
)

func renderOK(msg string) string {
	return styleOK.Render(symbolOK) + " " + msg
}

func renderWarn(msg string) string {
	return styleWarn.Render(symbolWarn) + " " + msg
}

func renderError(msg string) string {
	return styleError.Render(symbolError) + " " + msg
}

func renderInfo(msg string) string {
	return styleInfo.Render(symbolInfo) + " " + msg
}
