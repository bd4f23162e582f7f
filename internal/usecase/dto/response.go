package dto

import (
	"time"

	"github.com/nearby-places/internal/domain"
)

// SessionResponse - состояние сессии
type SessionResponse struct {
	ID           string              `json:"id"`
	LastActivity time.Time           `json:"last_activity"`
	State        domain.SessionState `json:"state"`
}

// PlaceResponse - выбранное место
type PlaceResponse struct {
	Place domain.Place `json:"place"`
}
