package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiBlue   = "\033[34m"
)

type statusLevel int

const (
	statusOK statusLevel = iota
	statusIdle
	statusFailed
)

// statusLine renders "label: value" with the label colored by level when the
// writer is a terminal.
func statusLine(w io.Writer, label, value string, level statusLevel) string {
	if !shouldColorize(w) {
		return label + ": " + value
	}
	color := ansiGreen
	switch level {
	case statusIdle:
		color = ansiYellow
	case statusFailed:
		color = ansiRed
	}
	return color + label + ansiReset + ": " + value
}

func headerLines(w io.Writer, title string) []string {
	rule := strings.Repeat("-", len(title))
	if shouldColorize(w) {
		return []string{ansiBlue + title + ansiReset, ansiBlue + rule + ansiReset}
	}
	return []string{title, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatUnix(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
