// Package session implements the polling and session-lifecycle engine:
// the long-running loop that tracks today's remote logs, fetches new
// bytes each cycle, survives daily rotation, refreshes the log list, and
// recovers from authentication failures.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/embertail-io/embertail/internal/logparse"
	"github.com/embertail-io/embertail/internal/models"
	"github.com/embertail-io/embertail/internal/scanner"
	"github.com/embertail-io/embertail/internal/sink"
)

// ErrNoLogs is returned when initial discovery finds nothing to tail.
var ErrNoLogs = errors.New("no logs discovered for today")

// ErrSelectionCancelled is returned when the operator cancels the
// interactive log selection. Callers treat it as a graceful exit.
var ErrSelectionCancelled = errors.New("log selection cancelled")

// Fetcher is the remote content collaborator. Its error counter and the
// profile token are the only state the engine shares with it; both are
// touched exclusively inside the error-budget step.
type Fetcher interface {
	FetchList(ctx context.Context, profile *models.Profile, category string) (string, error)
	FetchContent(ctx context.Context, profile *models.Profile, d *models.LogDescriptor) ([]byte, error)
	ProbeSize(ctx context.Context, profile *models.Profile, d *models.LogDescriptor) (int64, error)
	Authorize(ctx context.Context, profile *models.Profile) error
	ErrorCount() int
	ResetErrorCount()
	ErrorLimit() int
}

// ParseFunc turns raw chunks into a time-ordered entry sequence.
type ParseFunc func(chunks []logparse.Chunk) []models.Entry

// SelectFunc presents an interactive multi-select over discovered logs.
// ok is false when the operator cancelled.
type SelectFunc func(logs []models.LogDescriptor) (kept []models.LogDescriptor, ok bool, err error)

// Config configures the session engine.
type Config struct {
	Fetcher    Fetcher
	Sink       sink.Sink
	Parse      ParseFunc  // nil = logparse.Parse
	SelectLogs SelectFunc // nil = keep everything
	Logger     *slog.Logger

	// Now and Sleep are injectable for tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	Debug bool
}

// Engine owns all session state: the tracked descriptor set, the rollover
// flag, the refresh schedule, and the active profile. No collaborator
// mutates any of it.
type Engine struct {
	cfg       Config
	profile   models.Profile
	sessionID string

	interactive bool
	tracked     []models.LogDescriptor
	rollover    bool
	nextRefresh time.Time

	// lastProfilerSent is the rotation date of the profiler file most
	// recently emitted; an unchanged file is never re-sent.
	lastProfilerSent time.Time

	firstBatch bool
}

// New creates an engine for the given effective profile.
func New(cfg Config, profile models.Profile) (*Engine, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("session: Fetcher is required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("session: Sink is required")
	}
	if cfg.Parse == nil {
		cfg.Parse = logparse.Parse
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	return &Engine{
		cfg:        cfg,
		profile:    profile,
		sessionID:  uuid.NewString(),
		firstBatch: true,
	}, nil
}

// Run discovers the initial log set and polls until ctx is cancelled or
// an unrecoverable error occurs. Context cancellation is a graceful stop.
func (e *Engine) Run(ctx context.Context, interactive bool) error {
	e.interactive = interactive
	e.cfg.Logger.Info("session starting",
		"session", e.sessionID, "profile", e.profile.Name, "host", e.profile.Host)

	tracked, err := e.discover(ctx)
	if err != nil {
		return err
	}
	if len(tracked) == 0 {
		return ErrNoLogs
	}
	e.tracked = tracked

	// Start live: position each text log at its current end so history is
	// not replayed. The profiler CSV stays unread and is sent whole.
	if err := e.probeOffsets(ctx); err != nil {
		return err
	}
	e.nextRefresh = e.cfg.Now().Add(e.profile.RefreshEvery())

	for {
		if err := e.runCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := e.cfg.Sleep(ctx, e.profile.PollEvery()); err != nil {
			return nil
		}
	}
}

// runCycle performs one poll cycle: budget check, rollover check,
// scheduled refresh, concurrent fetch, parse, emit, profiler removal.
func (e *Engine) runCycle(ctx context.Context) error {
	if err := e.checkErrorBudget(ctx); err != nil {
		return err
	}

	now := e.cfg.Now()
	today := dayOf(now)

	// Rollover is detected before any content fetch: the old file names
	// vanish server-side exactly at the day boundary. The minimum tracked
	// rotation date is compared so a partially refreshed set still
	// triggers exactly once.
	if e.rollover || today.After(e.minRotationDate()) {
		e.rollover = true
		return e.recoverFromRollover(ctx)
	}

	if !now.Before(e.nextRefresh) {
		e.refreshLoglist(ctx)
		e.nextRefresh = now.Add(e.profile.RefreshEvery())
	}

	chunks, err := e.fetchAll(ctx)
	if err != nil {
		return err
	}

	entries := e.cfg.Parse(chunks)
	if len(entries) > 0 {
		if err := e.cfg.Sink.Emit(ctx, e.profile.Host, entries, e.firstBatch, e.cfg.Debug); err != nil {
			return fmt.Errorf("emit entries: %w", err)
		}
		e.firstBatch = false
	}

	e.dropProfiler()
	return nil
}

// checkErrorBudget is the sole self-healing path for authentication
// failures: over budget, the token is cleared, the counter reset, and
// fresh credentials issued before any fetch this cycle.
func (e *Engine) checkErrorBudget(ctx context.Context) error {
	f := e.cfg.Fetcher
	if f.ErrorCount() <= f.ErrorLimit() {
		return nil
	}
	e.cfg.Logger.Warn("fetch error budget exhausted, re-authorizing",
		"session", e.sessionID, "errors", f.ErrorCount(), "limit", f.ErrorLimit())
	e.profile.Token = ""
	f.ResetErrorCount()
	if err := f.Authorize(ctx, &e.profile); err != nil {
		return fmt.Errorf("re-authorization failed: %w", err)
	}
	return nil
}

// recoverFromRollover reruns the startup discovery path to pick up the
// new day's files. Failure is not fatal; the flag stays set and the next
// cycle retries.
func (e *Engine) recoverFromRollover(ctx context.Context) error {
	e.cfg.Logger.Info("log rotation detected, rediscovering", "session", e.sessionID)

	discovered, err := e.discover(ctx)
	if err != nil {
		if errors.Is(err, ErrSelectionCancelled) || errors.Is(err, context.Canceled) {
			return err
		}
		e.cfg.Logger.Warn("rollover discovery failed, will retry", "session", e.sessionID, "error", err)
		return nil
	}
	if len(discovered) == 0 {
		e.cfg.Logger.Warn("rollover discovery returned no logs, will retry", "session", e.sessionID)
		return nil
	}

	// Re-read the fresh files from scratch: everything in them is new.
	for i := range discovered {
		discovered[i].Offset = models.OffsetUnread
	}
	e.tracked = discovered
	e.rollover = false
	e.cfg.Logger.Info("rollover complete", "session", e.sessionID, "logs", len(discovered))
	return nil
}

// refreshLoglist rediscovers non-interactively and merges unseen names
// into the tracked set. Existing descriptors, and their watermarks, are
// never replaced.
func (e *Engine) refreshLoglist(ctx context.Context) {
	discovered, err := e.discoverQuiet(ctx)
	if err != nil {
		e.cfg.Logger.Warn("loglist refresh failed", "session", e.sessionID, "error", err)
		return
	}
	known := make(map[string]bool, len(e.tracked))
	for _, d := range e.tracked {
		known[d.Name] = true
	}
	added := 0
	for _, d := range discovered {
		if known[d.Name] {
			continue
		}
		e.tracked = append(e.tracked, d)
		added++
	}
	if added > 0 {
		e.cfg.Logger.Info("loglist refresh added logs", "session", e.sessionID, "added", added)
	}
}

// fetchAll retrieves new content for every tracked descriptor
// concurrently, advancing watermarks on success. Results are assembled in
// tracked order, not completion order. A failed fetch does not fail the
// cycle: the fetcher has already counted it, its descriptor keeps its
// watermark, and the budget check at the top of the next cycle
// re-authorizes once the limit is exceeded.
func (e *Engine) fetchAll(ctx context.Context) ([]logparse.Chunk, error) {
	results := make([][]byte, len(e.tracked))
	errs := make([]error, len(e.tracked))

	var wg sync.WaitGroup
	for i := range e.tracked {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.cfg.Fetcher.FetchContent(ctx, &e.profile, &e.tracked[i])
		}(i)
	}
	wg.Wait()

	var chunks []logparse.Chunk
	for i := range e.tracked {
		if errs[i] != nil {
			if errors.Is(errs[i], context.Canceled) {
				return nil, errs[i]
			}
			e.cfg.Logger.Warn("content fetch failed",
				"session", e.sessionID, "log", e.tracked[i].Name,
				"errors", e.cfg.Fetcher.ErrorCount(), "limit", e.cfg.Fetcher.ErrorLimit(),
				"error", errs[i])
			continue
		}
		got := int64(len(results[i]))
		if e.tracked[i].Offset == models.OffsetUnread {
			e.tracked[i].Offset = got
		} else {
			e.tracked[i].Offset += got
		}
		if got == 0 {
			continue
		}
		chunks = append(chunks, logparse.Chunk{Source: e.tracked[i].Name, Data: results[i]})
	}
	return chunks, nil
}

// discover runs the full startup discovery policy: today's .log files
// filtered by the allow-list, plus the newest unsent profiler CSV, with
// interactive narrowing when the run is interactive.
func (e *Engine) discover(ctx context.Context) ([]models.LogDescriptor, error) {
	logs, err := scanner.Discover(ctx, e.cfg.Fetcher, &e.profile, scanner.LogSuffix, e.cfg.Now(), e.cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("discover logs: %w", err)
	}

	kept := logs[:0]
	for _, d := range logs {
		if e.profile.AllowsType(d.LogType()) {
			kept = append(kept, d)
		}
	}
	logs = kept

	if p := e.discoverProfiler(ctx); p != nil {
		logs = append(logs, *p)
	}

	if e.interactive && e.cfg.SelectLogs != nil && len(logs) > 0 {
		selected, ok, err := e.cfg.SelectLogs(logs)
		if err != nil {
			return nil, fmt.Errorf("log selection: %w", err)
		}
		if !ok {
			return nil, ErrSelectionCancelled
		}
		logs = selected
	}
	return logs, nil
}

// discoverQuiet is the non-interactive discovery used by the refresh
// branch; selection policy is otherwise identical to startup.
func (e *Engine) discoverQuiet(ctx context.Context) ([]models.LogDescriptor, error) {
	wasInteractive := e.interactive
	e.interactive = false
	defer func() { e.interactive = wasInteractive }()
	return e.discover(ctx)
}

// discoverProfiler returns the newest profiler CSV for today, or nil when
// none exists, the allow-list excludes the category, or the newest file
// was already sent.
func (e *Engine) discoverProfiler(ctx context.Context) *models.LogDescriptor {
	csvs, err := scanner.Discover(ctx, e.cfg.Fetcher, &e.profile, scanner.ProfilerSuffix, e.cfg.Now(), e.cfg.Debug)
	if err != nil {
		e.cfg.Logger.Warn("profiler discovery failed", "session", e.sessionID, "error", err)
		return nil
	}
	if len(csvs) == 0 {
		return nil
	}

	newest := csvs[0]
	for _, d := range csvs[1:] {
		if d.RotationDate.After(newest.RotationDate) {
			newest = d
		}
	}
	if !e.profile.AllowsType(newest.LogType()) {
		return nil
	}
	if !newest.RotationDate.After(e.lastProfilerSent) {
		return nil
	}
	return &newest
}

// dropProfiler removes the profiler descriptor after emission; it is
// consumed exactly once per send. A descriptor whose fetch failed still
// sits at OffsetUnread and is kept for the next cycle.
func (e *Engine) dropProfiler() {
	for i, d := range e.tracked {
		if !strings.HasSuffix(d.Name, scanner.ProfilerSuffix) {
			continue
		}
		if d.Offset == models.OffsetUnread {
			return
		}
		e.lastProfilerSent = d.RotationDate
		e.tracked = append(e.tracked[:i], e.tracked[i+1:]...)
		return
	}
}

// probeOffsets positions every text descriptor at its current remote end.
func (e *Engine) probeOffsets(ctx context.Context) error {
	for i := range e.tracked {
		if strings.HasSuffix(e.tracked[i].Name, scanner.ProfilerSuffix) {
			continue
		}
		size, err := e.cfg.Fetcher.ProbeSize(ctx, &e.profile, &e.tracked[i])
		if err != nil {
			return fmt.Errorf("probe %s: %w", e.tracked[i].Name, err)
		}
		e.tracked[i].Offset = size
	}
	return nil
}

func (e *Engine) minRotationDate() time.Time {
	if len(e.tracked) == 0 {
		// Nothing tracked (profiler-only sets empty out after consumption);
		// never signals rollover.
		return dayOf(e.cfg.Now())
	}
	min := e.tracked[0].RotationDate
	for _, d := range e.tracked[1:] {
		if d.RotationDate.Before(min) {
			min = d.RotationDate
		}
	}
	return min
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
