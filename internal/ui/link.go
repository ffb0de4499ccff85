package ui

import (
	"os"

	"github.com/muesli/termenv"
)

// Link renders text as an OSC 8 hyperlink to url when stdout is a terminal,
// and as plain text otherwise
func Link(url, text string) string {
	if text == "" {
		text = url
	}
	if url == "" || !IsTerminal(os.Stdout) {
		return text
	}
	return termenv.Hyperlink(url, text)
}
