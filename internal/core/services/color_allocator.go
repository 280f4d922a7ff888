package services

import (
	"sync"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
)

// ColorAllocator hands out palette colors round-robin, one per organization,
// and keeps each assignment for the lifetime of the allocator.
type ColorAllocator struct {
	palette domain.Palette

	mu       sync.Mutex
	assigned map[string]int
	next     int
}

func NewColorAllocator(palette domain.Palette) (*ColorAllocator, error) {
	if len(palette) == 0 {
		return nil, domain.ErrEmptyPalette
	}

	p := make(domain.Palette, len(palette))
	copy(p, palette)

	return &ColorAllocator{
		palette:  p,
		assigned: make(map[string]int),
	}, nil
}

func (a *ColorAllocator) ColorFor(organizationKey string) domain.Color {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx, ok := a.assigned[organizationKey]
	if !ok {
		idx = a.next % len(a.palette)
		a.assigned[organizationKey] = idx
		a.next++
	}
	return a.palette[idx]
}

// Assignments returns a copy of the current organization to color mapping.
func (a *ColorAllocator) Assignments() map[string]domain.Color {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]domain.Color, len(a.assigned))
	for key, idx := range a.assigned {
		out[key] = a.palette[idx]
	}
	return out
}
