package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCursor_Zero(t *testing.T) {
	assert.True(t, Cursor{}.IsZero())
	assert.False(t, EpochCursor().IsZero())
	assert.Equal(t, "1970-01-01T00:00:00Z#0", EpochCursor().String())
}

func TestCursor_Less(t *testing.T) {
	t1 := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Microsecond)

	assert.True(t, Cursor{CreatedAt: t1, ID: 9}.Less(Cursor{CreatedAt: t2, ID: 1}))
	assert.True(t, Cursor{CreatedAt: t1, ID: 1}.Less(Cursor{CreatedAt: t1, ID: 2}))
	assert.False(t, Cursor{CreatedAt: t1, ID: 2}.Less(Cursor{CreatedAt: t1, ID: 2}))
	assert.True(t, EpochCursor().Less(Cursor{CreatedAt: t1}))

	// same instant in another zone
	local := t1.In(time.FixedZone("BRT", -3*60*60))
	assert.False(t, Cursor{CreatedAt: local, ID: 1}.Less(Cursor{CreatedAt: t1, ID: 1}))
}

func TestVoteEvent_After(t *testing.T) {
	t1 := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Microsecond)

	tests := []struct {
		name   string
		event  VoteEvent
		cursor Cursor
		want   bool
	}{
		{"later timestamp", VoteEvent{ID: 1, CreatedAt: t2}, Cursor{CreatedAt: t1, ID: 5}, true},
		{"earlier timestamp", VoteEvent{ID: 9, CreatedAt: t1}, Cursor{CreatedAt: t2, ID: 1}, false},
		{"same timestamp higher id", VoteEvent{ID: 3, CreatedAt: t2}, Cursor{CreatedAt: t2, ID: 2}, true},
		{"same timestamp same id", VoteEvent{ID: 2, CreatedAt: t2}, Cursor{CreatedAt: t2, ID: 2}, false},
		{"same timestamp no cursor id", VoteEvent{ID: 3, CreatedAt: t2}, Cursor{CreatedAt: t2}, false},
		{"after epoch", VoteEvent{ID: 1, CreatedAt: t1}, EpochCursor(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.After(tt.cursor))
		})
	}
}

func TestVoteEvent_Cursor(t *testing.T) {
	at := time.Date(2024, 10, 1, 9, 0, 0, 0, time.FixedZone("BRT", -3*60*60))
	c := VoteEvent{ID: 7, CreatedAt: at}.Cursor()

	assert.Equal(t, time.UTC, c.CreatedAt.Location())
	assert.True(t, c.CreatedAt.Equal(at))
	assert.Equal(t, int64(7), c.ID)
}
