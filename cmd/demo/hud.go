package main

import (
	"fmt"
	"strings"
)

// DebugOverlay collects the status fields shown in the window title.
type DebugOverlay struct {
	lines []string
}

func (do *DebugOverlay) AddLine(format string, args ...interface{}) {
	do.lines = append(do.lines, fmt.Sprintf(format, args...))
}

func (do *DebugOverlay) Clear() {
	do.lines = do.lines[:0]
}

// GetText returns one field per line.
func (do *DebugOverlay) GetText() string {
	if len(do.lines) == 0 {
		return ""
	}
	return strings.Join(do.lines, "\n") + "\n"
}

// Title joins the fields into a single line.
func (do *DebugOverlay) Title() string {
	return strings.Join(do.lines, " | ")
}
