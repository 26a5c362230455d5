package cmd

import "github.com/charmbracelet/lipgloss"

var styles = struct {
	Label   lipgloss.Style
	Value   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Stopped lipgloss.Style
}{
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Running: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Paused:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	Stopped: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
}

func field(label, value string) string {
	return styles.Label.Render(label+":") + " " + styles.Value.Render(value)
}
