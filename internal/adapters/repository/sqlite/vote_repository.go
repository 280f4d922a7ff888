package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

// Vote is the gorm row backing a domain.VoteEvent.
type Vote struct {
	ID               int64     `gorm:"primaryKey;autoIncrement;index:idx_votes_created_at_id,priority:2"`
	OrganizationName string    `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null;index:idx_votes_created_at_id,priority:1"`
}

func (v Vote) toDomain() domain.VoteEvent {
	return domain.VoteEvent{
		ID:              v.ID,
		OrganizationKey: v.OrganizationName,
		CreatedAt:       v.CreatedAt.UTC(),
	}
}

type voteRepository struct {
	db *gorm.DB
	// SQLite serializes writers anyway; holding the lock keeps created_at
	// non-decreasing in id order.
	insertLk sync.Mutex
	now      func() time.Time
}

// Open opens (and optionally migrates) the SQLite database at path.
func Open(path string, migrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: slogGorm.New(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if err := db.Exec("PRAGMA synchronous=normal;").Error; err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if migrate {
		if err := db.AutoMigrate(&Vote{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return db, nil
}

func NewVoteRepository(db *gorm.DB) ports.EventStore {
	return &voteRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *voteRepository) InsertVote(ctx context.Context, organizationKey string) (*domain.VoteEvent, error) {
	r.insertLk.Lock()
	defer r.insertLk.Unlock()

	vote := &Vote{
		OrganizationName: organizationKey,
		CreatedAt:        r.now().UTC().Truncate(time.Microsecond),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last Vote
		err := tx.Order("created_at DESC, id DESC").Take(&last).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && vote.CreatedAt.Before(last.CreatedAt) {
			vote.CreatedAt = last.CreatedAt
		}

		return tx.Create(vote).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save vote: %w", err)
	}

	event := vote.toDomain()
	return &event, nil
}

func (r *voteRepository) EventsAfter(ctx context.Context, cursor domain.Cursor) ([]domain.VoteEvent, error) {
	after := cursor.CreatedAt.UTC()

	q := r.db.WithContext(ctx)
	if cursor.ID > 0 {
		q = q.Where("created_at > ? OR (created_at = ? AND id > ?)", after, after, cursor.ID)
	} else {
		q = q.Where("created_at > ?", after)
	}

	var votes []Vote
	if err := q.Order("created_at ASC, id ASC").Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to get votes after %s: %w", cursor, err)
	}

	events := make([]domain.VoteEvent, len(votes))
	for i, v := range votes {
		events[i] = v.toDomain()
	}
	return events, nil
}

func (r *voteRepository) MostRecent(ctx context.Context) (*domain.VoteEvent, error) {
	var vote Vote
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Take(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest vote: %w", err)
	}

	event := vote.toDomain()
	return &event, nil
}
