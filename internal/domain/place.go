package domain

const (
	// DefaultCategory используется, если категория поиска не задана
	DefaultCategory = "restaurant"
	// DefaultLimit - количество результатов по умолчанию
	DefaultLimit = 20
)

// Place представляет точку интереса, полученную от провайдера.
// Результаты поиска заполнены частично, детали содержат rating и price_level.
type Place struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Coordinates Coordinate `json:"coordinates"`
	Address     string     `json:"address"`
	Rating      *float64   `json:"rating,omitempty"`
	PriceLevel  *int       `json:"price_level,omitempty"`
	Photos      []string   `json:"photos,omitempty"`
	Distance    *float64   `json:"distance,omitempty"` // meters
}

// Clone возвращает глубокую копию записи
func (p Place) Clone() Place {
	out := p
	if p.Rating != nil {
		v := *p.Rating
		out.Rating = &v
	}
	if p.PriceLevel != nil {
		v := *p.PriceLevel
		out.PriceLevel = &v
	}
	if p.Distance != nil {
		v := *p.Distance
		out.Distance = &v
	}
	if p.Photos != nil {
		out.Photos = append([]string(nil), p.Photos...)
	}
	return out
}

// ClonePlaces копирует список мест
func ClonePlaces(places []Place) []Place {
	if places == nil {
		return nil
	}
	out := make([]Place, len(places))
	for i, p := range places {
		out[i] = p.Clone()
	}
	return out
}

// SearchOptions - параметры поиска мест. Нулевые значения означают "не задано".
//
// MinRating принимается и сохраняется, но не фильтрует результаты.
type SearchOptions struct {
	Category  string   `json:"category,omitempty"`
	Radius    *float64 `json:"radius,omitempty"` // meters
	MinRating *float64 `json:"min_rating,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// WithDefaults возвращает копию с заполненными значениями по умолчанию
func (o SearchOptions) WithDefaults() SearchOptions {
	out := o.Clone()
	if out.Category == "" {
		out.Category = DefaultCategory
	}
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	return out
}

// Clone возвращает независимую копию опций
func (o SearchOptions) Clone() SearchOptions {
	out := o
	if o.Radius != nil {
		v := *o.Radius
		out.Radius = &v
	}
	if o.MinRating != nil {
		v := *o.MinRating
		out.MinRating = &v
	}
	return out
}
