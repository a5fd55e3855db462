package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF5555")
	ColorGreen   = lipgloss.Color("#50FA7B")
	ColorYellow  = lipgloss.Color("#F1FA8C")
	ColorOrange  = lipgloss.Color("#FFB86C")
	ColorCyan    = lipgloss.Color("#8BE9FD")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#F8F8F2")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PanelTitleActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)
)

// Risk badge styles, one per canonical level.
var (
	RiskHighStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	RiskModerateStyle = lipgloss.NewStyle().
				Foreground(ColorOrange)

	RiskLowStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	RiskUnknownStyle = lipgloss.NewStyle().
				Foreground(ColorGray)
)
