package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/signups-report/internal/metrics"
	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/store"
)

type Options struct {
	Limit        int
	WindowDays   int
	Timeout      time.Duration
	RefreshAfter time.Duration
	Counters     []CounterSpec
}

// Engine recomputes the dashboard from the store on every call. It keeps
// no state between calls.
type Engine struct {
	st   store.Store
	log  *slog.Logger
	rec  *metrics.Recorder
	asm  *Assembler
	opts Options
	now  func() time.Time
}

func NewEngine(st store.Store, log *slog.Logger, rec *metrics.Recorder, opts Options) *Engine {
	if opts.Counters == nil {
		opts.Counters = DefaultCounters
	}
	return &Engine{
		st:   st,
		log:  log,
		rec:  rec,
		asm:  NewAssembler(st, log, opts.Limit),
		opts: opts,
		now:  time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Refresh builds a full dashboard snapshot. The company table and sign-up
// series are required; counters fail individually.
func (e *Engine) Refresh(ctx context.Context) (models.Dashboard, error) {
	start := time.Now()
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	now := e.now().UTC()
	d := models.Dashboard{
		GeneratedAt:         now,
		RefreshAfterSeconds: int(e.opts.RefreshAfter / time.Second),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Companies, err = e.companies(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		d.Signups, err = e.signups(gctx, now)
		return err
	})
	g.Go(func() error {
		d.Counters = Counters(gctx, e.st, e.opts.Counters, e.rec, e.log)
		return nil
	})
	if err := g.Wait(); err != nil {
		e.log.Error("report failed", slog.String("err", err.Error()), slog.Duration("latency", time.Since(start)))
		return models.Dashboard{}, err
	}

	e.log.Info("report generated",
		slog.Int("rows", len(d.Companies.Rows)),
		slog.Int("days", len(d.Signups.Points)),
		slog.Int64("window_total", d.Signups.Total),
		slog.Duration("latency", time.Since(start)))
	return d, nil
}

func (e *Engine) Companies(ctx context.Context) (models.CompanyTable, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.companies(ctx, e.now().UTC())
}

func (e *Engine) Signups(ctx context.Context) (models.SignupSeries, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.signups(ctx, e.now().UTC())
}

func (e *Engine) Counters(ctx context.Context) []models.Counter {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return Counters(ctx, e.st, e.opts.Counters, e.rec, e.log)
}

func (e *Engine) Ping(ctx context.Context) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.st.Ping(ctx)
}

func (e *Engine) companies(ctx context.Context, now time.Time) (models.CompanyTable, error) {
	start := time.Now()
	t, err := e.asm.Companies(ctx, now)
	e.rec.ObserveSection("companies", start, err)
	if err == nil {
		e.rec.Companies(len(t.Rows))
	}
	return t, err
}

func (e *Engine) signups(ctx context.Context, now time.Time) (models.SignupSeries, error) {
	start := time.Now()
	s, err := Signups(ctx, e.st, now, e.opts.WindowDays)
	e.rec.ObserveSection("signups", start, err)
	if err == nil {
		e.rec.WindowTotal(s.Total)
	}
	return s, err
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.Timeout)
}
