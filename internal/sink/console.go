package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/embertail-io/embertail/internal/models"
)

// Adaptive colors matching the CLI palette.
var (
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
)

var (
	styleBanner  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleTime    = lipgloss.NewStyle().Foreground(colorDim)
	styleSource  = lipgloss.NewStyle().Foreground(colorGreen)
	levelStyles  = map[string]lipgloss.Style{
		"ERROR":   lipgloss.NewStyle().Bold(true).Foreground(colorRed),
		"FATAL":   lipgloss.NewStyle().Bold(true).Foreground(colorRed),
		"WARN":    lipgloss.NewStyle().Foreground(colorYellow),
		"WARNING": lipgloss.NewStyle().Foreground(colorYellow),
		"DEBUG":   lipgloss.NewStyle().Foreground(colorDim),
		"PROFILE": lipgloss.NewStyle().Foreground(colorCyan),
	}
	styleLevel = lipgloss.NewStyle()
)

const consoleTimeLayout = "15:04:05.000"

// Console renders entries as colorized lines.
type Console struct {
	out io.Writer
}

// NewConsole creates a console sink writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Emit implements Sink.
func (s *Console) Emit(_ context.Context, hostname string, entries []models.Entry, first, debug bool) error {
	if first {
		if _, err := fmt.Fprintln(s.out, styleBanner.Render("==> "+hostname+" <==")); err != nil {
			return err
		}
	}
	for _, e := range entries {
		ts := "            "
		if !e.Time.IsZero() {
			ts = e.Time.Format(consoleTimeLayout)
		}
		level := styleLevel
		if st, ok := levelStyles[e.Level]; ok {
			level = st
		}
		// Remote content may carry its own escape sequences; strip them so
		// our styling stays coherent.
		msg := ansi.Strip(e.Message)
		line := fmt.Sprintf("%s %s %s %s",
			styleTime.Render(ts),
			level.Render(pad(e.Level, 7)),
			styleSource.Render(e.Source),
			msg,
		)
		if debug && e.Raw != "" && e.Raw != e.Message {
			line += "\n" + styleTime.Render("  raw: "+ansi.Strip(e.Raw))
		}
		if _, err := fmt.Fprintln(s.out, line); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s
}
