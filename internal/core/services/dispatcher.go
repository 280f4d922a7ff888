package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

const (
	DefaultToastDuration = 3000 * time.Millisecond

	burstParticleCount = 100
	burstSpread        = 70
	burstShape         = "circle"
)

type DispatcherConfig struct {
	ToastDuration time.Duration
	// Rand drives burst placement; nil uses a time seeded source.
	Rand *rand.Rand
	Now  func() time.Time
}

// NotificationDispatcher turns vote events into a toast plus a particle burst.
// It keeps no state of its own beyond the shared color allocator.
type NotificationDispatcher struct {
	colors   *ColorAllocator
	notifier ports.Notifier
	logger   *slog.Logger

	toastDuration time.Duration
	now           func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewNotificationDispatcher(colors *ColorAllocator, notifier ports.Notifier, logger *slog.Logger, cfg DispatcherConfig) *NotificationDispatcher {
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = DefaultToastDuration
	}
	if cfg.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		cfg.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &NotificationDispatcher{
		colors:        colors,
		notifier:      notifier,
		logger:        logger.With("module", "dispatcher"),
		toastDuration: cfg.ToastDuration,
		now:           cfg.Now,
		rand:          cfg.Rand,
	}
}

func (d *NotificationDispatcher) Dispatch(ctx context.Context, event domain.VoteEvent) {
	color := d.colors.ColorFor(event.OrganizationKey)

	d.notifier.Toast(domain.Toast{
		ID:              uuid.New(),
		OrganizationKey: event.OrganizationKey,
		Message:         fmt.Sprintf("Vote casted for %s", event.OrganizationKey),
		Color:           color,
		Duration:        d.toastDuration,
		CreatedAt:       d.now(),
	})

	d.notifier.Burst(domain.Burst{
		Origin:        d.randomOrigin(),
		ParticleCount: burstParticleCount,
		Spread:        burstSpread,
		Shape:         burstShape,
		Colors:        []domain.Color{color},
	})

	eventsDispatched.WithLabelValues(string(color)).Inc()
	d.logger.Debug("dispatched vote", "id", event.ID, "organization", event.OrganizationKey, "color", color)
}

// DispatchBatch forwards events one by one, preserving their order.
func (d *NotificationDispatcher) DispatchBatch(ctx context.Context, events []domain.VoteEvent) {
	for _, event := range events {
		d.Dispatch(ctx, event)
	}
}

func (d *NotificationDispatcher) randomOrigin() domain.Point {
	d.randMu.Lock()
	defer d.randMu.Unlock()
	return domain.Point{X: d.rand.Float64(), Y: d.rand.Float64()}
}
