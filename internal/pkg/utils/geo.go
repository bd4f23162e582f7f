package utils

import (
	"math"

	"github.com/nearby-places/internal/domain"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters вычисляет расстояние по большому кругу (haversine) в метрах
func DistanceMeters(a, b domain.Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	lat1Rad := toRadians(a.Lat)
	lat2Rad := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius проверяет, что радиус поиска положителен (в метрах)
func ValidateRadius(radiusMeters float64) bool {
	return radiusMeters > 0 && !math.IsInf(radiusMeters, 1)
}

// BoundingBox строит прямоугольник, описанный вокруг окружности радиуса radiusMeters.
// Границы обрезаются по допустимому диапазону координат.
func BoundingBox(center domain.Coordinate, radiusMeters float64) domain.BoundingBox {
	dLat := radiusMeters / earthRadiusMeters * 180 / math.Pi

	cosLat := math.Cos(toRadians(center.Lat))
	dLon := 180.0
	if cosLat > 1e-9 {
		dLon = math.Min(dLat/cosLat, 180)
	}

	return domain.BoundingBox{
		MinLat: math.Max(center.Lat-dLat, -90),
		MinLon: math.Max(center.Lon-dLon, -180),
		MaxLat: math.Min(center.Lat+dLat, 90),
		MaxLon: math.Min(center.Lon+dLon, 180),
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
