package http

import "github.com/fyrsmithlabs/contextrank/internal/rankservice"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// LanguagesResponse is the response body for GET /api/v1/languages.
type LanguagesResponse struct {
	Languages []rankservice.LanguageInfo `json:"languages"`
}

// ErrorResponse is the body echo writes for an HTTPError.
type ErrorResponse struct {
	Message string `json:"message"`
}
