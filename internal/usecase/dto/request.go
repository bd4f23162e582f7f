package dto

import (
	"time"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/usecase"
)

// DeviceReportRequest - сообщение клиента о разрешении и позиции устройства.
// Позиция передаётся только вместе с обеими координатами.
type DeviceReportRequest struct {
	Permission string     `json:"permission,omitempty" validate:"omitempty,oneof=granted denied undetermined"`
	Latitude   *float64   `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude  *float64   `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Accuracy   *float64   `json:"accuracy,omitempty" validate:"omitempty,min=0"` // meters
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// HasPartialPosition - передана только одна из координат
func (r DeviceReportRequest) HasPartialPosition() bool {
	return (r.Latitude == nil) != (r.Longitude == nil)
}

// IsEmpty - в запросе нет ни разрешения, ни позиции
func (r DeviceReportRequest) IsEmpty() bool {
	return r.Permission == "" && r.Latitude == nil && r.Longitude == nil
}

// ToDeviceReport преобразует запрос в сообщение для сессии
func (r DeviceReportRequest) ToDeviceReport() usecase.DeviceReport {
	var report usecase.DeviceReport
	if r.Permission != "" {
		status := domain.PermissionStatus(r.Permission)
		report.Permission = &status
	}
	if r.Latitude != nil && r.Longitude != nil {
		snapshot := domain.LocationSnapshot{
			Coordinate: domain.Coordinate{Lat: *r.Latitude, Lon: *r.Longitude},
		}
		if r.Accuracy != nil {
			snapshot.Accuracy = *r.Accuracy
		}
		if r.CapturedAt != nil {
			snapshot.CapturedAt = *r.CapturedAt
		}
		report.Position = &snapshot
	}
	return report
}

// CreateSessionRequest - запрос на создание сессии
type CreateSessionRequest struct {
	Device *DeviceReportRequest `json:"device,omitempty" validate:"omitempty"`
}

// SearchPlacesRequest - параметры поиска мест. Пустое тело повторяет последние параметры.
type SearchPlacesRequest struct {
	Category  string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Radius    *float64 `json:"radius,omitempty" validate:"omitempty,gt=0,max=50000"` // meters
	MinRating *float64 `json:"min_rating,omitempty" validate:"omitempty,min=0,max=5"`
	Limit     int      `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// IsEmpty - параметры не переданы
func (r SearchPlacesRequest) IsEmpty() bool {
	return r.Category == "" && r.Radius == nil && r.MinRating == nil && r.Limit == 0
}

// ToSearchOptions возвращает опции поиска или nil, если параметры не переданы
func (r SearchPlacesRequest) ToSearchOptions() *domain.SearchOptions {
	if r.IsEmpty() {
		return nil
	}
	opts := domain.SearchOptions{
		Category:  r.Category,
		Radius:    r.Radius,
		MinRating: r.MinRating,
		Limit:     r.Limit,
	}
	out := opts.Clone()
	return &out
}
