package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the settsim ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"           _   _       _           ", "#818cf8"},
		{"  ___  ___| |_| |_ ___(_)_ __ ___  ", "#a78bfa"},
		{" / __|/ _ \\ __| __/ __| | '_ ` _ \\ ", "#c084fc"},
		{" \\__ \\  __/ |_| |_\\__ \\ | | | | | |", "#e879f9"},
		{" |___/\\___|\\__|\\__|___/_|_| |_| |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
