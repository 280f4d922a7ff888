package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
)

var errStoreDown = errors.New("store down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory event store with failure and latency hooks.
type memStore struct {
	mu     sync.Mutex
	events []domain.VoteEvent
	clock  time.Time

	failAfter  error
	failLatest error
	failInsert error

	// block, when set, is read once per EventsAfter call before answering.
	block      chan struct{}
	afterCalls int
	entered    chan struct{}
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *memStore) InsertVote(ctx context.Context, organizationKey string) (*domain.VoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return nil, s.failInsert
	}
	s.clock = s.clock.Add(time.Millisecond)
	return s.appendLocked(organizationKey, s.clock), nil
}

// insertAt appends an event with an explicit timestamp, e.g. to force collisions.
func (s *memStore) insertAt(organizationKey string, at time.Time) domain.VoteEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.appendLocked(organizationKey, at)
}

func (s *memStore) appendLocked(organizationKey string, at time.Time) *domain.VoteEvent {
	e := domain.VoteEvent{ID: int64(len(s.events) + 1), OrganizationKey: organizationKey, CreatedAt: at.UTC()}
	s.events = append(s.events, e)
	return &e
}

func (s *memStore) EventsAfter(ctx context.Context, cursor domain.Cursor) ([]domain.VoteEvent, error) {
	s.mu.Lock()
	s.afterCalls++
	block, entered := s.block, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter != nil {
		return nil, s.failAfter
	}

	out := []domain.VoteEvent{}
	for _, e := range s.events {
		if e.After(cursor) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cursor().Less(out[j].Cursor()) })
	return out, nil
}

func (s *memStore) MostRecent(ctx context.Context) (*domain.VoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLatest != nil {
		return nil, s.failLatest
	}
	if len(s.events) == 0 {
		return nil, nil
	}
	latest := s.events[0]
	for _, e := range s.events[1:] {
		if latest.Cursor().Less(e.Cursor()) {
			latest = e
		}
	}
	return &latest, nil
}

func (s *memStore) setFailAfter(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = err
}

func (s *memStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.afterCalls
}

// recordingDispatcher remembers every dispatched event in order.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.VoteEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event domain.VoteEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) dispatched() []domain.VoteEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.VoteEvent, len(d.events))
	copy(out, d.events)
	return out
}

// recordingNotifier captures toasts and bursts.
type recordingNotifier struct {
	mu     sync.Mutex
	toasts []domain.Toast
	bursts []domain.Burst
}

func (n *recordingNotifier) Toast(toast domain.Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast)
}

func (n *recordingNotifier) Burst(burst domain.Burst) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bursts = append(n.bursts, burst)
}
