package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a "#rrggbb" display color.
type Color string

// RGB splits the color into its channels.
func (c Color) RGB() (r, g, b uint8, err error) {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// Palette is the fixed, ordered set of colors handed out to organizations.
type Palette []Color

// DefaultPalette opens with the confetti colors of the original board.
var DefaultPalette = Palette{
	"#bbdefb",
	"#ffcc80",
	"#ff8a65",
	"#a5d6a7",
	"#ce93d8",
	"#fff59d",
	"#80deea",
	"#f48fb1",
}

// ParsePalette builds a palette from a comma separated list of hex colors.
func ParsePalette(s string) (Palette, error) {
	var p Palette
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, "#") {
			part = "#" + part
		}
		c := Color(strings.ToLower(part))
		if _, _, _, err := c.RGB(); err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if len(p) == 0 {
		return nil, ErrEmptyPalette
	}
	return p, nil
}
