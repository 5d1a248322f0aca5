package logger

import (
	"fmt"
	"os"
	"strings"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	cyan   = "\033[36m"
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	gray   = "\033[90m"
)

func logf(color, level, tag, msg string) {
	fmt.Fprintf(os.Stdout, "%s%-5s%s %s[%s]%s %s\n", color, level, reset, gray, tag, reset, msg)
}

// Info logs an informational message under a component tag.
func Info(tag, msg string) {
	logf(cyan, "INFO", tag, msg)
}

// Success logs a completed-step message.
func Success(tag, msg string) {
	logf(green, "OK", tag, msg)
}

// Warn logs a non-fatal problem.
func Warn(tag, msg string) {
	logf(yellow, "WARN", tag, msg)
}

// Error logs a fatal or near-fatal problem.
func Error(tag, msg string) {
	logf(red, "ERROR", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(os.Stdout, "%s%srefine-arb%s %s%s%s\n", bold, cyan, reset, gray, version, reset)
}

// Section prints an underlined section header for report output.
func Section(title string) {
	fmt.Fprintf(os.Stdout, "\n%s%s%s\n%s\n", bold, title, reset, strings.Repeat("-", len(title)))
}

// Stats prints a single aligned key/value statistics line.
func Stats(label string, value interface{}) {
	fmt.Fprintf(os.Stdout, "  %-18s %v\n", label, value)
}
