package domain

import (
	"fmt"
	"time"
)

var epoch = time.Unix(0, 0).UTC()

// Cursor marks the newest event a client has already processed.
// ID is the tie-break for events sharing CreatedAt; zero means "any id".
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// EpochCursor is the sentinel used when the store holds no events yet.
func EpochCursor() Cursor {
	return Cursor{CreatedAt: epoch}
}

// IsZero reports whether the cursor was never set.
func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == 0
}

// Less reports whether c sorts strictly before o.
func (c Cursor) Less(o Cursor) bool {
	if c.CreatedAt.Equal(o.CreatedAt) {
		return c.ID < o.ID
	}
	return c.CreatedAt.Before(o.CreatedAt)
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s#%d", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
}
