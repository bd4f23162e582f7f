package domain

// SessionState - модель чтения одной сессии поиска мест.
// Places непуст только при наличии CurrentLocation.
type SessionState struct {
	CurrentLocation *LocationSnapshot `json:"current_location,omitempty"`
	LocationStatus  Status            `json:"location_status"`
	LocationError   string            `json:"location_error,omitempty"`

	SearchOptions SearchOptions `json:"search_options"`
	Places        []Place       `json:"places"`
	PlacesStatus  Status        `json:"places_status"`
	PlacesError   string        `json:"places_error,omitempty"`
	// PlacesStale - результаты получены для предыдущей позиции
	PlacesStale bool `json:"places_stale"`
}

// NewSessionState возвращает начальное состояние сессии
func NewSessionState() SessionState {
	return SessionState{
		LocationStatus: StatusIdle,
		PlacesStatus:   StatusIdle,
		Places:         []Place{},
	}
}

// Clone возвращает глубокую копию состояния
func (s SessionState) Clone() SessionState {
	out := s
	if s.CurrentLocation != nil {
		loc := *s.CurrentLocation
		out.CurrentLocation = &loc
	}
	out.SearchOptions = s.SearchOptions.Clone()
	out.Places = ClonePlaces(s.Places)
	if out.Places == nil {
		out.Places = []Place{}
	}
	return out
}
