package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

const userAgent = "votefeed-viewer"

var tracer = otel.Tracer("eventstore")

type Config struct {
	BaseURL string
	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
	Timeout   time.Duration
}

// Client talks to the event store HTTP API and satisfies ports.EventStore.
type Client struct {
	logger  *slog.Logger
	baseURL *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

var _ ports.EventStore = (*Client)(nil)

func NewClient(logger *slog.Logger, cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse store url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("store url must be absolute: %q", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		logger:  logger.With("module", "eventstore_client"),
		baseURL: u,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: limiter,
	}, nil
}

type voteJSON struct {
	ID               int64  `json:"id"`
	OrganizationName string `json:"organization_name"`
	CreatedAt        string `json:"created_at"`
	UTCCreatedAt     string `json:"utc_created_at"`
}

// toDomain trusts the store's UTC annotation; a timestamp without a zone is UTC.
func (v voteJSON) toDomain() (domain.VoteEvent, error) {
	raw := v.UTCCreatedAt
	if raw == "" {
		raw = v.CreatedAt
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return domain.VoteEvent{}, fmt.Errorf("failed to parse created_at %q: %w", raw, err)
	}
	return domain.VoteEvent{
		ID:              v.ID,
		OrganizationKey: v.OrganizationName,
		CreatedAt:       t.UTC(),
	}, nil
}

func (c *Client) InsertVote(ctx context.Context, organizationKey string) (*domain.VoteEvent, error) {
	ctx, span := tracer.Start(ctx, "InsertVote")
	defer span.End()

	body, err := json.Marshal(map[string]string{"organizationName": organizationKey})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vote: %w", err)
	}

	var v voteJSON
	if err := c.do(ctx, http.MethodPost, "/api/votes", nil, body, http.StatusCreated, &v); err != nil {
		return nil, err
	}

	event, err := v.toDomain()
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) EventsAfter(ctx context.Context, cursor domain.Cursor) ([]domain.VoteEvent, error) {
	ctx, span := tracer.Start(ctx, "EventsAfter")
	defer span.End()

	q := url.Values{}
	q.Set("after", cursor.CreatedAt.UTC().Format(time.RFC3339Nano))
	if cursor.ID > 0 {
		q.Set("after_id", strconv.FormatInt(cursor.ID, 10))
	}

	var votes []voteJSON
	if err := c.do(ctx, http.MethodGet, "/api/votes", q, nil, http.StatusOK, &votes); err != nil {
		return nil, err
	}

	events := make([]domain.VoteEvent, 0, len(votes))
	for _, v := range votes {
		event, err := v.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Client) MostRecent(ctx context.Context) (*domain.VoteEvent, error) {
	ctx, span := tracer.Start(ctx, "MostRecent")
	defer span.End()

	var v voteJSON
	if err := c.do(ctx, http.MethodGet, "/api/votes/latest", nil, nil, http.StatusOK, &v); err != nil {
		return nil, err
	}

	// The store answers {} when it holds no events.
	if v.ID == 0 {
		return nil, nil
	}

	event, err := v.toDomain()
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// StatusError is returned for any non-success HTTP response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d: %s", e.StatusCode, e.Message)
}

// Unwrap classifies server side failures as an unavailable store.
func (e *StatusError) Unwrap() error {
	if e.StatusCode >= http.StatusInternalServerError {
		return domain.ErrStoreUnavailable
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, want int, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to make request: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("unexpected response", "method", method, "path", path, "status", resp.StatusCode)
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
