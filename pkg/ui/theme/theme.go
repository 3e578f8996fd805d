package theme

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette colors shared by prompts, notices and the callback page.
const (
	ColorRed    = "#FD5750"
	ColorGreen  = "#2ECC71"
	ColorYellow = "#F5C542"
	ColorCyan   = "#00A3E0"
	ColorGray   = "#8A8A8A"
	ColorWhite  = "#FFFFFF"
)

// Status icons.
const (
	IconSuccess = "✓"
	IconWarning = "⚠"
	IconError   = "✗"
	IconInfo    = "ℹ"
)

// StyleSet provides pre-configured lipgloss styles for common UI elements.
type StyleSet struct {
	Title   lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Link    lipgloss.Style
	Box     lipgloss.Style
}

// Styles is the default style set.
var Styles = NewStyleSet()

// NewStyleSet builds the style set from the palette.
func NewStyleSet() *StyleSet {
	return &StyleSet{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan)),
		Link:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan)).Underline(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorGreen)).
			Padding(0, 1),
	}
}

// HuhTheme returns the prompt theme.
func HuhTheme() *huh.Theme {
	t := huh.ThemeCharm()

	accent := lipgloss.Color(ColorRed)
	muted := lipgloss.Color(ColorGray)

	t.Focused.Title = t.Focused.Title.Foreground(accent).Bold(true)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(accent)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(accent)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(accent).Foreground(lipgloss.Color(ColorWhite))
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(accent)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(accent)
	t.Focused.Description = t.Focused.Description.Foreground(muted)
	t.Blurred.Title = t.Blurred.Title.Foreground(muted)

	return t
}
