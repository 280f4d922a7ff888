package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
)

func TestVoteService_Cast(t *testing.T) {
	store := newMemStore()
	svc := NewVoteService(store)

	event, err := svc.Cast(context.Background(), "  acme ")
	require.NoError(t, err)
	assert.Equal(t, "acme", event.OrganizationKey)
	assert.Equal(t, int64(1), event.ID)
}

func TestVoteService_CastRejectsEmptyKey(t *testing.T) {
	store := newMemStore()
	svc := NewVoteService(store)

	_, err := svc.Cast(context.Background(), " \t")
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
	assert.Empty(t, store.events)
}

func TestVoteService_CastSurfacesStoreFailure(t *testing.T) {
	store := newMemStore()
	store.failInsert = errStoreDown
	svc := NewVoteService(store)

	_, err := svc.Cast(context.Background(), "acme")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestVoteService_SinceRequiresCursor(t *testing.T) {
	svc := NewVoteService(newMemStore())

	_, err := svc.Since(context.Background(), domain.Cursor{})
	assert.ErrorIs(t, err, domain.ErrInvalidCursor)

	events, err := svc.Since(context.Background(), domain.EpochCursor())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestVoteService_Latest(t *testing.T) {
	store := newMemStore()
	svc := NewVoteService(store)

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = svc.Cast(context.Background(), "acme")
	require.NoError(t, err)
	latest, err = svc.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "acme", latest.OrganizationKey)
}
