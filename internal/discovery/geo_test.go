package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineZeroForSamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{45.5, -122.6},
		{-33.9, 151.2},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, HaversineMeters(p[0], p[1], p[0], p[1]))
	}
}

func TestHaversineSymmetry(t *testing.T) {
	d1 := HaversineMeters(-23.55, -46.63, -22.91, -43.17) // São Paulo -> Rio
	d2 := HaversineMeters(-22.91, -43.17, -23.55, -46.63)
	assert.Equal(t, d1, d2)
	assert.Greater(t, d1, 0.0)
}

func TestHaversineKnownDistance(t *testing.T) {
	// 0.01 degrees of longitude at the equator is ~1112 m on a sphere of
	// radius 6,371,000 m.
	d := HaversineMeters(0, 0, 0, 0.01)
	assert.InDelta(t, 1112, d, 1.0)

	// One degree of latitude is ~111.19 km everywhere.
	d = HaversineMeters(10, 20, 11, 20)
	assert.InDelta(t, 111195, d, 10.0)
}

func TestHaversineMonotonicAlongBearing(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 10; i++ {
		d := HaversineMeters(0, 0, 0, float64(i)*0.01)
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestRoundToInt(t *testing.T) {
	assert.Equal(t, 2, roundToInt(1.5))
	assert.Equal(t, -2, roundToInt(-1.5))
	assert.Equal(t, 1, roundToInt(1.4))
	assert.Equal(t, 11, roundToInt(11.111))
}
