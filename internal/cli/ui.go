package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/redline/pkg/batch"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// kindColors matches the annotation colors used in rendered SVGs.
var kindColors = map[batch.Kind]lipgloss.Color{
	batch.KindOverlap:   lipgloss.Color("#8e4ec6"),
	batch.KindSpacing:   lipgloss.Color("#f76b15"),
	batch.KindDimension: lipgloss.Color("#e5484d"),
	batch.KindName:      lipgloss.Color("#0090ff"),
}

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

func kindStyle(k batch.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(kindColors[k])
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// out is where status lines go; tests swap it for a buffer.
var out io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(out, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints batch statistics on a single line.
func printStats(b *batch.Batch, cached bool) {
	parts := []string{fmt.Sprintf("%d frames", len(b.Frames))}
	for _, k := range []batch.Kind{batch.KindDimension, batch.KindSpacing, batch.KindOverlap, batch.KindName} {
		if n := b.CountByKind()[k]; n > 0 {
			parts = append(parts, kindStyle(k).Render(fmt.Sprintf("%d %s", n, k)))
		}
	}
	if len(b.Skipped) > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d skipped", len(b.Skipped))))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	fmt.Fprintln(out, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printSkipped lists skipped requests with their reason.
func printSkipped(skipped []batch.Skipped) {
	for _, s := range skipped {
		frame := s.FrameID
		if frame == "" {
			frame = "-"
		}
		printDetail("%s in %s: %s (%s)", s.Request, frame, s.Message, s.Code)
	}
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(out)
}
