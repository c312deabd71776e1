// Package clifmt renders contact data for terminal output: ANSI styling,
// tabwriter tables and the full contact detail view.
package clifmt

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

var styled = detectStyle(os.Stdout)

func detectStyle(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func colorize(code, s string) string {
	if !styled || s == "" {
		return s
	}
	return code + s + ansiReset
}

func Header(s string) string  { return colorize(ansiBold, s) }
func Key(s string) string     { return colorize(ansiCyan, s) }
func Dim(s string) string     { return colorize(ansiDim, s) }
func Success(s string) string { return colorize(ansiGreen, s) }
func Warn(s string) string    { return colorize(ansiYellow, s) }

func Headerf(format string, args ...any) string {
	return Header(fmt.Sprintf(format, args...))
}
