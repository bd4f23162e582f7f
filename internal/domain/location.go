package domain

import "time"

// LocationSnapshot - зафиксированное положение устройства
type LocationSnapshot struct {
	Coordinate Coordinate `json:"coordinate"`
	Accuracy   float64    `json:"accuracy,omitempty"` // meters
	CapturedAt time.Time  `json:"captured_at"`
}

// PermissionStatus - решение пользователя о доступе к геолокации
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// Accuracy - профиль точности/энергопотребления при запросе позиции
type Accuracy string

const (
	AccuracyLow      Accuracy = "low"
	AccuracyBalanced Accuracy = "balanced"
	AccuracyHigh     Accuracy = "high"
)
