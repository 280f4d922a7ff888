package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	logger  *slog.Logger
}

func NewVoteHandler(service ports.VoteService, logger *slog.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		logger:  logger.With("module", "vote_handler"),
	}
}

type castVoteRequest struct {
	OrganizationName string `json:"organizationName"`
}

type voteResponse struct {
	ID               int64     `json:"id"`
	OrganizationName string    `json:"organization_name"`
	CreatedAt        time.Time `json:"created_at"`
	UTCCreatedAt     string    `json:"utc_created_at"`
}

func toVoteResponse(e domain.VoteEvent) voteResponse {
	utc := e.CreatedAt.UTC()
	return voteResponse{
		ID:               e.ID,
		OrganizationName: e.OrganizationKey,
		CreatedAt:        utc,
		UTCCreatedAt:     utc.Format(time.RFC3339Nano),
	}
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.service.Cast(r.Context(), req.OrganizationName)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrganization) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		h.logger.Error("failed to insert vote", "err", err, "organization", req.OrganizationName)
		http.Error(w, "failed to insert vote", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toVoteResponse(*event))
}

func (h *VoteHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseCursor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.service.Since(r.Context(), cursor)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		h.logger.Error("failed to fetch votes", "err", err, "cursor", cursor.String())
		http.Error(w, "failed to fetch votes", http.StatusInternalServerError)
		return
	}

	resp := make([]voteResponse, len(events))
	for i, e := range events {
		resp[i] = toVoteResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VoteHandler) LatestVote(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.Latest(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch the latest vote", "err", err)
		http.Error(w, "failed to fetch the latest vote", http.StatusInternalServerError)
		return
	}

	if event == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, toVoteResponse(*event))
}

// parseCursor reads ?after=<timestamp>[&after_id=<id>]. Timestamps without a zone
// are taken as UTC.
func parseCursor(r *http.Request) (domain.Cursor, error) {
	afterParam := r.URL.Query().Get("after")
	if afterParam == "" {
		return domain.Cursor{}, fmt.Errorf("%w: missing after timestamp", domain.ErrInvalidCursor)
	}

	after, err := dateparse.ParseIn(afterParam, time.UTC)
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("%w: invalid after timestamp: %s", domain.ErrInvalidCursor, err)
	}

	cursor := domain.Cursor{CreatedAt: after.UTC()}

	if idParam := r.URL.Query().Get("after_id"); idParam != "" {
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil || id < 0 {
			return domain.Cursor{}, fmt.Errorf("%w: invalid after_id: %q", domain.ErrInvalidCursor, idParam)
		}
		cursor.ID = id
	}

	if cursor.IsZero() {
		return domain.EpochCursor(), nil
	}
	return cursor, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}
