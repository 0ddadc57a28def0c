// Package term decides whether log output gets ANSI colors.
//
// Colors are on for ColorAlways, off for ColorNever, and for ColorAuto only
// when the writer is a terminal, NO_COLOR (https://no-color.org) is unset
// and TERM is not "dumb".
package term

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/framecopy/internal/config"
)

// ColorEnabled resolves mode for output written to w.
func ColorEnabled(mode config.ColorMode, w io.Writer) bool {
	return resolve(mode, w, os.Getenv)
}

func resolve(mode config.ColorMode, w io.Writer, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(w) &&
			getenv("NO_COLOR") == "" &&
			strings.ToLower(getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether w is a file attached to a TTY.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
