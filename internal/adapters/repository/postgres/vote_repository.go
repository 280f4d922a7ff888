package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.EventStore {
	return &voteRepository{
		db: db,
	}
}

// insertLockKey identifies the advisory lock serializing vote inserts.
const insertLockKey = 0x766f746573

// InsertVote serializes writers on an advisory lock held until commit, so rows become
// visible in (created_at, id) order and a poller never advances past a row still in flight.
func (r *voteRepository) InsertVote(ctx context.Context, organizationKey string) (*domain.VoteEvent, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, insertLockKey); err != nil {
		return nil, fmt.Errorf("failed to acquire insert lock: %w", err)
	}

	query := `
		INSERT INTO votes (organization_name, created_at)
		VALUES ($1, GREATEST(clock_timestamp(), COALESCE((SELECT max(created_at) FROM votes), '-infinity')))
		RETURNING id, organization_name, created_at;
	`
	var event domain.VoteEvent
	err = tx.QueryRowContext(ctx, query, organizationKey).Scan(&event.ID, &event.OrganizationKey, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}
	event.CreatedAt = event.CreatedAt.UTC()
	return &event, nil
}

func (r *voteRepository) EventsAfter(ctx context.Context, cursor domain.Cursor) ([]domain.VoteEvent, error) {
	query := `
		SELECT id, organization_name, created_at
		FROM votes
		WHERE created_at > $1
		   OR ($2::bigint > 0 AND created_at = $1 AND id > $2)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, cursor.CreatedAt.UTC(), cursor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes after %s: %w", cursor, err)
	}
	defer rows.Close()

	events := make([]domain.VoteEvent, 0)
	for rows.Next() {
		var event domain.VoteEvent
		if err := rows.Scan(&event.ID, &event.OrganizationKey, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		event.CreatedAt = event.CreatedAt.UTC()
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return events, nil
}

func (r *voteRepository) MostRecent(ctx context.Context) (*domain.VoteEvent, error) {
	query := `
		SELECT id, organization_name, created_at
		FROM votes
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	var event domain.VoteEvent
	err := r.db.QueryRowContext(ctx, query).Scan(&event.ID, &event.OrganizationKey, &event.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest vote: %w", err)
	}
	event.CreatedAt = event.CreatedAt.UTC()
	return &event, nil
}
