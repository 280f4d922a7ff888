package domain

import (
	"time"

	"github.com/google/uuid"
)

type Toast struct {
	ID              uuid.UUID
	OrganizationKey string
	Message         string
	Color           Color
	Duration        time.Duration
	CreatedAt       time.Time
}

// Point is a relative screen position, both axes in [0, 1).
type Point struct {
	X float64
	Y float64
}

type Burst struct {
	Origin        Point
	ParticleCount int
	Spread        int
	Shape         string
	Colors        []Color
}
