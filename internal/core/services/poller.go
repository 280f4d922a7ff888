package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

const DefaultPollInterval = 750 * time.Millisecond

var tracer = otel.Tracer("poller")

type PollerConfig struct {
	Interval time.Duration
	// Timeout bounds a single round trip; zero means four intervals.
	Timeout time.Duration
}

// Poller pulls events newer than its cursor on a fixed interval and hands them to the
// dispatcher. At most one tick is in flight at any time; overlapping ticks are skipped.
type Poller struct {
	store      ports.EventStore
	dispatcher ports.Dispatcher
	logger     *slog.Logger

	interval time.Duration
	timeout  time.Duration

	cursorLk sync.RWMutex
	cursor   domain.Cursor

	inFlight atomic.Bool
	ticks    sync.WaitGroup
}

func NewPoller(store ports.EventStore, dispatcher ports.Dispatcher, logger *slog.Logger, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 4 * cfg.Interval
	}

	return &Poller{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.With("module", "poller"),
		interval:   cfg.Interval,
		timeout:    cfg.Timeout,
	}
}

// Seed installs the starting cursor. A cursor never moves backwards, so seeding
// behind the current position is ignored.
func (p *Poller) Seed(cursor domain.Cursor) error {
	if cursor.IsZero() {
		return domain.ErrInvalidCursor
	}

	p.cursorLk.Lock()
	defer p.cursorLk.Unlock()

	if !p.cursor.IsZero() && cursor.Less(p.cursor) {
		p.logger.Warn("ignoring seed behind current cursor", "seed", cursor.String(), "cursor", p.cursor.String())
		return nil
	}
	p.cursor = cursor
	cursorTimestamp.Set(float64(cursor.CreatedAt.Unix()))
	return nil
}

func (p *Poller) Cursor() domain.Cursor {
	p.cursorLk.RLock()
	defer p.cursorLk.RUnlock()
	return p.cursor
}

func (p *Poller) advance(cursor domain.Cursor) {
	p.cursorLk.Lock()
	defer p.cursorLk.Unlock()

	if p.cursor.Less(cursor) {
		p.cursor = cursor
		cursorTimestamp.Set(float64(cursor.CreatedAt.Unix()))
	}
}

// Tick runs one poll cycle and returns the number of dispatched events.
// It returns domain.ErrTickInFlight without touching the store when another tick is running.
func (p *Poller) Tick(ctx context.Context) (int, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		pollTicks.WithLabelValues("skipped").Inc()
		return 0, domain.ErrTickInFlight
	}
	defer p.inFlight.Store(false)

	cursor := p.Cursor()
	if cursor.IsZero() {
		return 0, domain.ErrCursorUnset
	}

	ctx, span := tracer.Start(ctx, "Tick")
	defer span.End()
	span.SetAttributes(attribute.String("cursor", cursor.String()))

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	events, err := p.store.EventsAfter(ctx, cursor)
	pollDuration.Observe(time.Since(start).Seconds())
	if err != nil && parent.Err() != nil {
		return 0, parent.Err()
	}
	if err != nil {
		pollTicks.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "poll failed")
		p.logger.Error("failed to poll events, cursor unchanged", "err", err, "cursor", cursor.String())
		return 0, fmt.Errorf("failed to fetch events after %s: %w", cursor, err)
	}

	if len(events) == 0 {
		pollTicks.WithLabelValues("empty").Inc()
		return 0, nil
	}

	next := cursor
	dispatched := 0
	for _, event := range events {
		// A store honoring the ordering contract never trips this.
		if !event.After(next) {
			p.logger.Warn("dropping event at or behind cursor", "id", event.ID, "created_at", event.CreatedAt, "cursor", next.String())
			continue
		}
		p.dispatcher.Dispatch(ctx, event)
		next = event.Cursor()
		dispatched++
	}
	p.advance(next)

	pollTicks.WithLabelValues("ok").Inc()
	pollBatchSize.Observe(float64(len(events)))
	span.SetAttributes(attribute.Int("dispatched", dispatched))
	p.logger.Debug("poll dispatched events", "count", dispatched, "cursor", next.String())

	return dispatched, nil
}

// Run ticks until ctx is cancelled. Each tick runs on its own goroutine so a slow
// round trip never delays the timer; Run waits for the last tick before returning.
func (p *Poller) Run(ctx context.Context) error {
	if p.Cursor().IsZero() {
		return domain.ErrCursorUnset
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.ticks.Wait()

	p.logger.Info("polling started", "interval", p.interval, "cursor", p.Cursor().String())

	p.spawnTick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("polling stopped", "cursor", p.Cursor().String())
			return nil
		case <-ticker.C:
			p.spawnTick(ctx)
		}
	}
}

func (p *Poller) spawnTick(ctx context.Context) {
	p.ticks.Add(1)
	go func() {
		defer p.ticks.Done()
		if _, err := p.Tick(ctx); errors.Is(err, domain.ErrTickInFlight) {
			p.logger.Debug("skipping tick, previous poll still in flight")
		}
	}()
}
