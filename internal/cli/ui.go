package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen = lipgloss.Color("35")  // Green - success
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// styleSuccess for the one-line result summary.
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// stylePath for file paths.
	stylePath = lipgloss.NewStyle().Foreground(colorDim)
)
