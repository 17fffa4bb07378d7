package main

import (
	"strings"
	"testing"
)

func TestRenderTableWithoutColumns(t *testing.T) {
	if got := renderTable(nil, [][]string{{"x"}}); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestRenderTablePadsShortRowsAndWrapsWideColumns(t *testing.T) {
	subject := strings.Repeat("lighthouse", 3)
	out := renderTable([]column{
		{Header: "#", Right: true},
		{Header: "Subject", MaxWidth: 10},
		{Header: "Origin"},
	}, [][]string{{"1", subject}})

	if strings.Contains(out, subject) {
		t.Fatalf("expected subject to wrap at 10 columns:\n%s", out)
	}
	if !strings.Contains(out, "lighthouse") {
		t.Fatalf("expected wrapped subject fragments:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	width := len([]rune(lines[0]))
	for _, line := range lines {
		if len([]rune(line)) != width {
			t.Fatalf("ragged table, short row was not padded:\n%s", out)
		}
	}
}
