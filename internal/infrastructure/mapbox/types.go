package mapbox

import (
	"fmt"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/pkg/utils"
)

// Mapbox Geocoding API response types.

type geocodingResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string             `json:"id"`
	Text       string             `json:"text"`
	PlaceName  string             `json:"place_name"`
	Center     []float64          `json:"center"` // [lon, lat]
	Properties *featureProperties `json:"properties"`
}

type featureProperties struct {
	Category   string   `json:"category"`
	Rating     *float64 `json:"rating"`
	PriceLevel *int     `json:"price_level"`
}

// toPlace переводит feature в Place. fallbackCategory используется,
// если провайдер не вернул категорию.
func (f feature) toPlace(fallbackCategory string) (domain.Place, error) {
	if len(f.Center) != 2 {
		return domain.Place{}, fmt.Errorf("feature %q: center must be [lon, lat], got %d values", f.ID, len(f.Center))
	}

	coord := domain.Coordinate{Lat: f.Center[1], Lon: f.Center[0]}
	if !utils.ValidateCoordinates(coord.Lat, coord.Lon) {
		return domain.Place{}, fmt.Errorf("feature %q: center out of range: %v", f.ID, f.Center)
	}

	category := fallbackCategory
	if f.Properties != nil && f.Properties.Category != "" {
		category = f.Properties.Category
	}

	return domain.Place{
		ID:          f.ID,
		Name:        f.Text,
		Category:    category,
		Coordinates: coord,
		Address:     f.PlaceName,
	}, nil
}
