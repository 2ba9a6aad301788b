package cli

import (
	"os"

	"golang.org/x/term"
)

// Test seams for the terminal queries.
var (
	isTerminal = term.IsTerminal
	getSize    = term.GetSize
)

// Pixels per terminal cell, used to turn the terminal into a viewport.
const (
	cellWidthDIP  = 8
	cellHeightDIP = 16

	defaultViewportWidth  = 400
	defaultViewportHeight = 200
)

// previewViewport sizes the barcode preview after the terminal on stdout,
// or returns a fixed size when stdout is not a terminal.
func previewViewport() (width, height int) {
	fd := int(os.Stdout.Fd())
	if !isTerminal(fd) {
		return defaultViewportWidth, defaultViewportHeight
	}
	cols, rows, err := getSize(fd)
	if err != nil || cols <= 0 || rows <= 0 {
		return defaultViewportWidth, defaultViewportHeight
	}
	return cols * cellWidthDIP, rows * cellHeightDIP / 2
}
