package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary = lipgloss.Color("#FC6D26") // GitLab orange

	// Status colors
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#3B82F6") // Blue

	// State colors
	ColorOpen    = lipgloss.Color("#10B981") // Green
	ColorDraft   = lipgloss.Color("#F59E0B") // Amber
	ColorMerged  = lipgloss.Color("#8B5CF6") // Purple
	ColorClosed  = lipgloss.Color("#6B7280") // Gray
	ColorRunning = lipgloss.Color("#3B82F6") // Blue
	ColorUnknown = lipgloss.Color("#9CA3AF") // Light gray

	// Text colors
	ColorTextMuted  = lipgloss.Color("#9CA3AF") // Gray
	ColorTextBright = lipgloss.Color("#FFFFFF") // White

	ColorBgMuted = lipgloss.Color("#111827") // Darker gray
	ColorBorder  = lipgloss.Color("#374151") // Medium gray
)

var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// Text styles
var (
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
)

// State styles for merge requests, issues and pipelines
var (
	StateOpenStyle = lipgloss.NewStyle().
			Foreground(ColorOpen).
			Bold(true)

	StateDraftStyle = lipgloss.NewStyle().
			Foreground(ColorDraft).
			Bold(true)

	StateMergedStyle = lipgloss.NewStyle().
				Foreground(ColorMerged).
				Bold(true)

	StateClosedStyle = lipgloss.NewStyle().
				Foreground(ColorClosed)

	StateRunningStyle = lipgloss.NewStyle().
				Foreground(ColorRunning)

	StateFailedStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StateUnknownStyle = lipgloss.NewStyle().
				Foreground(ColorUnknown)
)

// Message styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)
)

// Table styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorTextBright).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TableRowAltStyle = lipgloss.NewStyle().
				Background(ColorBgMuted).
				Padding(0, 1)

	TableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)
)

// Tree styles
var (
	TreeRootStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	TreeEnumeratorStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)
)
