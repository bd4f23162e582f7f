package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nearby-places/internal/domain"
)

func TestDistanceMeters(t *testing.T) {
	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := DistanceMeters(domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 0, Lon: 1})
		assert.InDelta(t, 111195, d, 50)
	})

	t.Run("zero for identical points", func(t *testing.T) {
		p := domain.Coordinate{Lat: 41.3851, Lon: 2.1734}
		assert.Equal(t, 0.0, DistanceMeters(p, p))
	})

	t.Run("symmetric and positive", func(t *testing.T) {
		pairs := [][2]domain.Coordinate{
			{{Lat: 37.0, Lon: -122.0}, {Lat: 37.0005, Lon: -122.001}},
			{{Lat: -33.8688, Lon: 151.2093}, {Lat: 51.5074, Lon: -0.1278}},
			{{Lat: 89.9, Lon: 0}, {Lat: -89.9, Lon: 179.9}},
			{{Lat: 10, Lon: 179.99}, {Lat: 10, Lon: -179.99}},
		}
		for _, pair := range pairs {
			ab := DistanceMeters(pair[0], pair[1])
			ba := DistanceMeters(pair[1], pair[0])
			assert.InDelta(t, ab, ba, 1e-6)
			assert.Greater(t, ab, 0.0)
		}
	})
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(0, 0))
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(90.1, 0))
	assert.False(t, ValidateCoordinates(0, -180.5))
}

func TestBoundingBox(t *testing.T) {
	center := domain.Coordinate{Lat: 37.0, Lon: -122.0}
	box := BoundingBox(center, 1000)

	assert.Less(t, box.MinLat, center.Lat)
	assert.Greater(t, box.MaxLat, center.Lat)
	assert.Less(t, box.MinLon, center.Lon)
	assert.Greater(t, box.MaxLon, center.Lon)

	north := DistanceMeters(center, domain.Coordinate{Lat: box.MaxLat, Lon: center.Lon})
	assert.InDelta(t, 1000, north, 1)

	east := DistanceMeters(center, domain.Coordinate{Lat: center.Lat, Lon: box.MaxLon})
	assert.InDelta(t, 1000, east, 5)

	pole := BoundingBox(domain.Coordinate{Lat: 89.999, Lon: 0}, 5000)
	assert.Equal(t, 90.0, pole.MaxLat)
	assert.Equal(t, -180.0, pole.MinLon)
	assert.Equal(t, 180.0, pole.MaxLon)
}
