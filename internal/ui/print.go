package ui

import (
	"fmt"
	"io"
	"os"
)

// Out receives command output and Err receives messages about the command.
// Keeping them apart lets --json output be piped while warnings stay visible.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

// Success prints a success message with a checkmark icon
func Success(msg string) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+msg))
}

// Successf prints a formatted success message with a checkmark icon
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Error prints an error message with an X icon
func Error(msg string) {
	fmt.Fprintln(Err, ErrorStyle.Render("✗ "+msg))
}

// Warning prints a warning message with a warning icon
func Warning(msg string) {
	fmt.Fprintln(Err, WarningStyle.Render("⚠ "+msg))
}

// Warningf prints a formatted warning message with a warning icon
func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}

// Info prints an info message with an info icon
func Info(msg string) {
	fmt.Fprintln(Err, InfoStyle.Render("ℹ "+msg))
}

// Infof prints a formatted info message with an info icon
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Print prints a plain message (no styling)
func Print(msg string) {
	fmt.Fprintln(Out, msg)
}

// Dim returns dimmed/muted text
func Dim(text string) string {
	return DimStyle.Render(text)
}

// Bold returns bold text
func Bold(text string) string {
	return BoldStyle.Render(text)
}

// Highlight returns highlighted text (primary color, bold)
func Highlight(text string) string {
	return HighlightStyle.Render(text)
}
