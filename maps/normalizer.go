package maps

import (
	"math"

	"campusexplorer/errs"
)

// Stored positions never reach the map edges so markers stay fully visible.
const (
	MinPercent = 5.0
	MaxPercent = 95.0
)

// Surface is the logical canvas a map is rendered on, in its own units
// (not device pixels).
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultSurface is the campus map's 700x500 canvas.
var DefaultSurface = Surface{Width: 700, Height: 500}

// Valid reports whether the surface has been measured.
func (s Surface) Valid() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

func (s Surface) check() error {
	if !s.Valid() {
		return errs.InvalidSurface(s.Width, s.Height)
	}
	return nil
}

// ToSurface projects a normalized position onto the surface.
func ToSurface(pctX, pctY float64, s Surface) (float64, float64, error) {
	if err := s.check(); err != nil {
		return 0, 0, err
	}
	return pctX / 100 * s.Width, pctY / 100 * s.Height, nil
}

// ToPercent maps a surface point back to a normalized position, clamped into
// [MinPercent, MaxPercent] on both axes.
func ToPercent(sx, sy float64, s Surface) (float64, float64, error) {
	if err := s.check(); err != nil {
		return 0, 0, err
	}
	return ClampPercent(sx / s.Width * 100), ClampPercent(sy / s.Height * 100), nil
}

// ClampPercent pins v into [MinPercent, MaxPercent]. NaN pins to MinPercent.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return MinPercent
	}
	return math.Max(MinPercent, math.Min(MaxPercent, v))
}
