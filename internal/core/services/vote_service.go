package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

const maxOrganizationKeyLen = 200

type voteService struct {
	store ports.EventStore
}

func NewVoteService(store ports.EventStore) ports.VoteService {
	return &voteService{
		store: store,
	}
}

func (s *voteService) Cast(ctx context.Context, organizationKey string) (*domain.VoteEvent, error) {
	key := strings.TrimSpace(organizationKey)
	if key == "" || len(key) > maxOrganizationKeyLen {
		return nil, domain.ErrInvalidOrganization
	}

	event, err := s.store.InsertVote(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vote for %q: %w", key, err)
	}

	votesCast.Inc()
	return event, nil
}

func (s *voteService) Since(ctx context.Context, cursor domain.Cursor) ([]domain.VoteEvent, error) {
	if cursor.IsZero() {
		return nil, domain.ErrInvalidCursor
	}
	return s.store.EventsAfter(ctx, cursor)
}

func (s *voteService) Latest(ctx context.Context) (*domain.VoteEvent, error) {
	return s.store.MostRecent(ctx)
}
