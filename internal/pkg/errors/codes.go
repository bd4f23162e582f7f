package errors

import "net/http"

var (
	ErrPermissionDenied = New(
		"PERMISSION_DENIED",
		"Location permission denied",
		http.StatusForbidden,
	)

	ErrPositionUnavailable = New(
		"POSITION_UNAVAILABLE",
		"Location unavailable",
		http.StatusServiceUnavailable,
	)

	ErrPlacesSearchFailed = New(
		"PLACES_SEARCH_FAILED",
		"Failed to search nearby places",
		http.StatusBadGateway,
	)

	ErrDetailsUnavailable = New(
		"DETAILS_UNAVAILABLE",
		"Place details unavailable",
		http.StatusNotFound,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Session not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrMissingAPIKey = New(
		"MISSING_API_KEY",
		"Missing MAPBOX_ACCESS_TOKEN",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
