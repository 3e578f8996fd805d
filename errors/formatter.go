package errors

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

const (
	// DefaultMaxLineLength is the default maximum line length before wrapping.
	DefaultMaxLineLength = 80

	newline = "\n"
)

// FormatterConfig controls error formatting behavior.
type FormatterConfig struct {
	// Verbose enables context and stack output.
	Verbose bool

	// Color controls color output: "auto", "always", or "never".
	Color string

	// MaxLineLength is the maximum length before wrapping.
	MaxLineLength int
}

// DefaultFormatterConfig returns default formatting configuration.
func DefaultFormatterConfig() FormatterConfig {
	return FormatterConfig{
		Verbose:       false,
		Color:         "auto",
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Format formats an error for display: the message, the stable code, then any hints.
func Format(err error, config FormatterConfig) string {
	if err == nil {
		return ""
	}

	useColor := shouldUseColor(config.Color)

	errorStyle := lipgloss.NewStyle()
	codeStyle := lipgloss.NewStyle()
	if useColor {
		errorStyle = errorStyle.Foreground(lipgloss.Color("#FD5750"))
		codeStyle = codeStyle.Foreground(lipgloss.Color("#808080"))
	}

	var output strings.Builder

	mainMsg := err.Error()
	if len(mainMsg) > config.MaxLineLength && !config.Verbose {
		output.WriteString(errorStyle.Render(wrapText(mainMsg, config.MaxLineLength)))
	} else {
		output.WriteString(errorStyle.Render(mainMsg))
	}

	if code := GetCode(err); code != "" {
		output.WriteString(newline)
		output.WriteString(codeStyle.Render("Code: " + code))
	}

	hints := errors.GetAllHints(err)
	if len(hints) > 0 {
		output.WriteString(newline)
		for _, hint := range hints {
			output.WriteString("    " + hint)
			output.WriteString(newline)
		}
	}

	if config.Verbose {
		if ctx := formatContext(err); ctx != "" {
			output.WriteString(newline)
			output.WriteString(ctx)
		}
		output.WriteString(newline)
		output.WriteString(fmt.Sprintf("%+v", err))
	}

	return output.String()
}

// formatContext lists key=value pairs attached via ErrorBuilder.WithContext.
func formatContext(err error) string {
	var lines []string
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, detail := range payload.SafeDetails {
			fields := strings.Fields(detail)
			pairs := make([]string, 0, len(fields))
			for _, field := range fields {
				parts := strings.SplitN(field, "=", 2)
				if len(parts) != 2 || parts[0] == "" {
					pairs = nil
					break
				}
				pairs = append(pairs, fmt.Sprintf("  %s: %s", parts[0], parts[1]))
			}
			lines = append(lines, pairs...)
		}
	}
	return strings.Join(lines, newline)
}

func shouldUseColor(colorMode string) bool {
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// wrapText wraps text to the specified width, preserving explicit line breaks.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = DefaultMaxLineLength
	}

	var out []string
	for _, paragraph := range strings.Split(text, newline) {
		var lines []string
		var current strings.Builder
		for _, word := range strings.Fields(paragraph) {
			if current.Len() > 0 && current.Len()+1+len(word) > width {
				lines = append(lines, current.String())
				current.Reset()
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(word)
		}
		if current.Len() > 0 {
			lines = append(lines, current.String())
		}
		out = append(out, strings.Join(lines, newline))
	}

	return strings.Join(out, newline)
}
