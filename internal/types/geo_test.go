package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCoordinateString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"CommaSeparated", "55.75,37.61", true},
		{"SpaceSeparated", "55.75 37.61", true},
		{"CommaAndSpace", "55.75, 37.61", true},
		{"Negative", "-33.86,151.2", true},
		{"Integers", "55,37", true},
		{"SurroundingWhitespace", "  55.75,37.61  ", true},
		{"PlaceName", "Москва", false},
		{"TrailingText", "55.75,37.61 Москва", false},
		{"SingleNumber", "55.75", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCoordinateString(tt.input))
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		coord, err := ParseCoordinate("55.7558, 37.6173")
		require.NoError(t, err)
		assert.InDelta(t, 55.7558, coord.Lat, 1e-9)
		assert.InDelta(t, 37.6173, coord.Lon, 1e-9)
	})

	t.Run("SpaceSeparator", func(t *testing.T) {
		coord, err := ParseCoordinate("55.7558 37.6173")
		require.NoError(t, err)
		assert.InDelta(t, 55.7558, coord.Lat, 1e-9)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseCoordinate("somewhere nice")
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})

	t.Run("LatitudeOutOfRange", func(t *testing.T) {
		_, err := ParseCoordinate("91.0,37.6")
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})

	t.Run("LongitudeOutOfRange", func(t *testing.T) {
		_, err := ParseCoordinate("55.7,181.0")
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})
}

func TestCoordinateString(t *testing.T) {
	c := Coordinate{Lat: 55.7558, Lon: 37.6173}
	assert.Equal(t, "55.755800,37.617300", c.String())
}

func TestDistanceKm(t *testing.T) {
	moscow := Coordinate{Lat: 55.7558, Lon: 37.6173}
	kazan := Coordinate{Lat: 55.7963, Lon: 49.1088}

	t.Run("MoscowKazan", func(t *testing.T) {
		// Great-circle distance is roughly 720 km.
		d := moscow.DistanceKm(kazan)
		assert.InDelta(t, 720, d, 10)
	})

	t.Run("SamePoint", func(t *testing.T) {
		assert.Zero(t, moscow.DistanceKm(moscow))
	})

	t.Run("Symmetric", func(t *testing.T) {
		assert.InDelta(t, moscow.DistanceKm(kazan), kazan.DistanceKm(moscow), 1e-9)
	})
}
