// Package logger writes leveled, colorized lines through the standard log package.
package logger

import (
	"fmt"
	"log"
	"time"

	"github.com/fatih/color"
)

var (
	infoColor   = color.New(color.FgBlue)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
	dimColor    = color.New(color.FgHiBlack)
	methodColor = color.New(color.FgMagenta)
)

// Info logs general information.
func Info(format string, args ...any) {
	log.Print(infoColor.Sprintf(format, args...))
}

// Success logs a completed step.
func Success(format string, args ...any) {
	log.Print(okColor.Sprint("✓ " + fmt.Sprintf(format, args...)))
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	log.Print(warnColor.Sprint("⚠ " + fmt.Sprintf(format, args...)))
}

// Error logs a failure.
func Error(format string, args ...any) {
	log.Print(errorColor.Sprint("✗ " + fmt.Sprintf(format, args...)))
}

// Request logs one HTTP request with its status and duration.
func Request(method, path string, status int, d time.Duration) {
	log.Printf("%s %s %s %s",
		methodColor.Sprintf("%-6s", method),
		path,
		statusColor(status).Sprintf("[%d]", status),
		dimColor.Sprintf("(%s)", formatDuration(d)),
	)
}

func statusColor(status int) *color.Color {
	switch {
	case status >= 500:
		return errorColor
	case status >= 400:
		return warnColor
	case status >= 300:
		return infoColor
	default:
		return okColor
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
