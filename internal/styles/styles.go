// Package styles holds the lipgloss palette and render helpers shared by the
// CLI and the REPL.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ColorRed    = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}
	ColorBlue   = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#F9A825", Dark: "#FFD54F"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
)

var (
	BoldStyle   = lipgloss.NewStyle().Bold(true)
	ResultStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorRed)
	OpStyle     = lipgloss.NewStyle().Foreground(ColorBlue)
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorYellow)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorGray)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// RenderResult renders a numeric result.
func RenderResult(s string) string {
	return ResultStyle.Render(s)
}

// RenderError renders an error message.
func RenderError(s string) string {
	return ErrorStyle.Render(s)
}

// RenderOp renders an operator symbol or name.
func RenderOp(s string) string {
	return OpStyle.Render(s)
}

// RenderDim renders secondary text.
func RenderDim(s string) string {
	return DimStyle.Render(s)
}

// RenderHeader renders a section header.
func RenderHeader(s string) string {
	return HeaderStyle.Render(s)
}

// Box wraps content in a rounded border.
func Box(content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGray).
		Padding(0, 1).
		Render(content)
}
