package maps

import (
	"errors"
	"math"
	"testing"

	"campusexplorer/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSurface(t *testing.T) {
	sx, sy, err := ToSurface(50, 20, DefaultSurface)
	require.NoError(t, err)
	assert.InDelta(t, 350, sx, 1e-9)
	assert.InDelta(t, 100, sy, 1e-9)
}

func TestRoundTrip(t *testing.T) {
	surfaces := []Surface{DefaultSurface, {Width: 1, Height: 1}, {Width: 1920, Height: 1080}, {Width: 333.3, Height: 0.5}}
	for _, s := range surfaces {
		for x := MinPercent; x <= MaxPercent; x += 7.5 {
			for y := MinPercent; y <= MaxPercent; y += 11.25 {
				sx, sy, err := ToSurface(x, y, s)
				require.NoError(t, err)
				px, py, err := ToPercent(sx, sy, s)
				require.NoError(t, err)
				assert.InDelta(t, x, px, 1e-9, "x on %+v", s)
				assert.InDelta(t, y, py, 1e-9, "y on %+v", s)
			}
		}
	}
}

func TestToPercentClamps(t *testing.T) {
	cases := []struct {
		sx, sy       float64
		wantX, wantY float64
	}{
		{-70, 550, 5, 95},
		{770, -50, 95, 5},
		{0, 0, 5, 5},
		{700, 500, 95, 95},
		{35, 475, 5, 95},
	}
	for _, c := range cases {
		px, py, err := ToPercent(c.sx, c.sy, DefaultSurface)
		require.NoError(t, err)
		assert.InDelta(t, c.wantX, px, 1e-9)
		assert.InDelta(t, c.wantY, py, 1e-9)
	}
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 95.0, ClampPercent(150))
	assert.Equal(t, 5.0, ClampPercent(-5))
	assert.Equal(t, 42.5, ClampPercent(42.5))
	assert.Equal(t, 5.0, ClampPercent(math.NaN()))
	assert.Equal(t, 95.0, ClampPercent(math.Inf(1)))
}

func TestDegenerateSurface(t *testing.T) {
	for _, s := range []Surface{{}, {Width: 700}, {Height: 500}, {Width: -1, Height: 5}} {
		_, _, err := ToSurface(50, 50, s)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrInvalidSurface))

		_, _, err = ToPercent(10, 10, s)
		assert.True(t, errors.Is(err, errs.ErrInvalidSurface))
	}
}
