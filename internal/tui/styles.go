package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorDim   = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
	colorGreen = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleCursor   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleItem     = lipgloss.NewStyle()
	styleItemDim  = lipgloss.NewStyle().Foreground(colorDim)
	styleSelected = lipgloss.NewStyle().Foreground(colorGreen)
	styleHelp     = lipgloss.NewStyle().Foreground(colorDim)
)
