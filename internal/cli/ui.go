package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/affectively-ai/foldline/pkg/engine"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorAccent  = lipgloss.Color("36")  // teal, headings and highlights
	colorOK      = lipgloss.Color("35")  // green, success and full modes
	colorCaution = lipgloss.Color("220") // amber, warnings and degraded modes
	colorFail    = lipgloss.Color("167") // soft red, errors
	colorAction  = lipgloss.Color("75")  // light blue, suggested commands
	colorText    = lipgloss.Color("255") // bright white, values
	colorMuted   = lipgloss.Color("245") // gray, secondary text
	colorFaint   = lipgloss.Color("240") // dim gray, de-emphasized text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for section headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleDim for muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorText)

	// StyleSuccess for success messages and generous render modes.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorOK)

	// StyleWarning for warnings and degraded render modes.
	StyleWarning = lipgloss.NewStyle().Foreground(colorCaution)

	styleError   = lipgloss.NewStyle().Foreground(colorFail)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand = lipgloss.NewStyle().Foreground(colorAction)
)

// modeStyle maps a render mode to its display style: green while content
// keeps its full shape, plain while it degrades gracefully, dim once it is
// collapsed or gone.
func modeStyle(m engine.RenderMode) lipgloss.Style {
	switch m {
	case engine.ModeComfortable, engine.ModeFull:
		return StyleSuccess
	case engine.ModeCollapsed, engine.ModeHidden:
		return StyleDim
	default:
		return StyleValue
	}
}

// =============================================================================
// Status Output
// =============================================================================

func statusLine(icon string, style lipgloss.Style, msg string) {
	fmt.Println(style.Render(icon) + " " + msg)
}

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	statusLine("✓", StyleSuccess, fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	statusLine("✗", styleError, fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	statusLine("!", StyleWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	statusLine("›", styleMuted, fmt.Sprintf(format, args...))
}

// printDetail prints an indented detail line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output-file line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

// printStats prints one line of solve statistics.
func printStats(itemCount, included int, utilization float64) {
	stats := fmt.Sprintf("%d items · %d included · %.0f%% utilized",
		itemCount, included, utilization*100)
	fmt.Println("  " + StyleDim.Render(stats))
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
