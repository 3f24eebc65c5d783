package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"lyricsync/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

// statusLabelWidth keeps doctor output in two columns.
const statusLabelWidth = 24

func paint(text string, kind statusKind, colorize bool) string {
	if !colorize {
		return text
	}
	return statusStyles[kind].color + text + ansiReset
}

// renderStatusLine formats "  label:   [KIND] message".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + statusStyles[kind].label + "]"
	if message != "" {
		status += " " + message
	}
	return paint(fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", status), kind, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, statusInfo, colorize),
		paint(strings.Repeat("-", len(heading)), statusInfo, colorize),
	}
}

// preflightLines renders check results followed by a summary line. Optional
// tools that are missing pass but are shown as warnings.
func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results)+1)
	failed := 0
	for _, r := range results {
		kind := statusOK
		switch {
		case !r.Passed:
			kind = statusError
			failed++
		case strings.HasSuffix(r.Detail, "(optional)"):
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	if failed == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, fmt.Sprintf("%d checks passed", len(results)), colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d of %d checks failed", failed, len(results)), colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
