// Package sink renders or ships the merged entry stream.
package sink

import (
	"context"
	"io"
	"sort"

	"github.com/embertail-io/embertail/internal/models"
)

// Sink consumes one cycle's worth of time-ordered entries.
type Sink interface {
	Emit(ctx context.Context, hostname string, entries []models.Entry, first, debug bool) error
}

// Adapter routes entries to the forwarding sink when one is configured,
// otherwise to the console. Stateless per call.
type Adapter struct {
	forward *Forward
	console *Console
}

// ForSession builds the sink adapter for a run. out is the console
// destination, normally os.Stdout.
func ForSession(cfg *models.ForwardConfig, out io.Writer) *Adapter {
	a := &Adapter{console: NewConsole(out)}
	if cfg != nil && cfg.URL != "" {
		a.forward = NewForward(*cfg)
	}
	return a
}

// Emit implements Sink.
func (a *Adapter) Emit(ctx context.Context, hostname string, entries []models.Entry, first, debug bool) error {
	if a.forward != nil {
		return a.forward.Emit(ctx, hostname, entries, first, debug)
	}
	// The parser already orders entries; sorting again here keeps console
	// output correct even for callers that bypass it.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	return a.console.Emit(ctx, hostname, entries, first, debug)
}
