package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// In is where prompts read answers from
var In io.Reader = os.Stdin

// Confirm asks a yes/no question on Err. Anything but "y" or "yes" is no.
func Confirm(prompt string) bool {
	fmt.Fprintf(Err, "%s [y/N] ", prompt)
	input, _ := bufio.NewReader(In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
