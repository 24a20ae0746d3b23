package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the dslhost ASCII banner followed by the listen address.
func PrintBanner(w io.Writer, addr string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _     _ _               _   ", "#818cf8"},
		{"   __| |___| | |__   ___  ___| |_ ", "#a78bfa"},
		{"  / _` / __| | '_ \\ / _ \\/ __| __|", "#c084fc"},
		{" | (_| \\__ \\ | | | | (_) \\__ \\ |_ ", "#e879f9"},
		{"  \\__,_|___/_|_| |_|\\___/|___/\\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  listening on %s\n\n", termenv.String("http://"+addr).Bold())
}
