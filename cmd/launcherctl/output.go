package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/CreativeUnicorns/launcherprefs"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

func printSuccess(w io.Writer, format string, args ...any) {
	green.Fprintf(w, "✓ "+format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	yellow.Fprintf(w, "⚠ "+format+"\n", args...)
}

// printOutcome writes one colored line per store import outcome.
func printOutcome(w io.Writer, o launcherprefs.StoreOutcome) {
	switch o.Status {
	case launcherprefs.StatusImported:
		suffix := ""
		if o.Legacy {
			suffix = " (legacy actions)"
		}
		green.Fprintf(w, "✓ %-12s", o.Store)
		fmt.Fprintf(w, " %d keys%s\n", o.Keys, suffix)
	case launcherprefs.StatusFailed:
		red.Fprintf(w, "✗ %-12s", o.Store)
		fmt.Fprintf(w, " %v\n", o.Err)
	default:
		yellow.Fprintf(w, "- %-12s", o.Store)
		fmt.Fprintf(w, " %v\n", o.Err)
	}
}
