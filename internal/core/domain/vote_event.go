package domain

import "time"

// VoteEvent is one cast vote as recorded by the event store. Events are ordered by
// (CreatedAt, ID); CreatedAt alone may repeat under concurrent inserts.
type VoteEvent struct {
	ID              int64     `json:"id"`
	OrganizationKey string    `json:"organization_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// Cursor returns the cursor positioned exactly on e.
func (e VoteEvent) Cursor() Cursor {
	return Cursor{CreatedAt: e.CreatedAt.UTC(), ID: e.ID}
}

// After reports whether e lies beyond c. A cursor without an ID excludes every
// event sharing its timestamp.
func (e VoteEvent) After(c Cursor) bool {
	if e.CreatedAt.Equal(c.CreatedAt) {
		return c.ID != 0 && e.ID > c.ID
	}
	return e.CreatedAt.After(c.CreatedAt)
}
