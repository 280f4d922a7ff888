package eventstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/vncsmyrnk/votefeed/internal/adapters/handler/http"
	"github.com/vncsmyrnk/votefeed/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStoreServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "votes.db"), true)
	require.NoError(t, err)

	svc := services.NewVoteService(sqlite.NewVoteRepository(db))
	server := httptest.NewServer(handler.NewHandler(handler.NewVoteHandler(svc, discardLogger())))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(discardLogger(), Config{BaseURL: url, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient(discardLogger(), Config{BaseURL: "localhost"})
	assert.Error(t, err)
}

func TestClient_RoundTrip(t *testing.T) {
	server := setupStoreServer(t)
	c := newTestClient(t, server.URL)
	ctx := context.Background()

	latest, err := c.MostRecent(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	acme, err := c.InsertVote(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acme.ID)
	assert.Equal(t, time.UTC, acme.CreatedAt.Location())

	beta, err := c.InsertVote(ctx, "beta")
	require.NoError(t, err)

	events, err := c.EventsAfter(ctx, domain.EpochCursor())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, *acme, events[0])
	assert.Equal(t, *beta, events[1])

	events, err = c.EventsAfter(ctx, acme.Cursor())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "beta", events[0].OrganizationKey)

	latest, err = c.MostRecent(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, *beta, *latest)
}

func TestClient_InvalidVote(t *testing.T) {
	server := setupStoreServer(t)
	c := newTestClient(t, server.URL)

	_, err := c.InsertVote(context.Background(), "")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.False(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestClient_ServerFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "failed to fetch votes", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.EventsAfter(context.Background(), domain.EpochCursor())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestClient_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestClient(t, url)
	_, err := c.MostRecent(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestClient_SendsCompoundCursor(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	ts := time.Date(2024, 10, 1, 12, 0, 0, 123456000, time.UTC)

	_, err := c.EventsAfter(context.Background(), domain.Cursor{CreatedAt: ts, ID: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-10-01T12:00:00.123456Z"}, gotQuery["after"])
	assert.Equal(t, []string{"7"}, gotQuery["after_id"])

	_, err = c.EventsAfter(context.Background(), domain.Cursor{CreatedAt: ts})
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "after_id")
}

func TestClient_ParsesZonelessTimestampsAsUTC(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 4, "organization_name": "acme", "created_at": "2024-10-01 12:00:00.5"},
			{"id": 5, "organization_name": "beta", "created_at": "2024-10-01T14:00:00.75+02:00", "utc_created_at": "2024-10-01T12:00:00.75Z"}
		]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	events, err := c.EventsAfter(context.Background(), domain.EpochCursor())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, time.Date(2024, 10, 1, 12, 0, 0, 500000000, time.UTC), events[0].CreatedAt)
	assert.Equal(t, time.Date(2024, 10, 1, 12, 0, 0, 750000000, time.UTC), events[1].CreatedAt)
}
