package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MedicalServiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
}

type MedicalServiceListResponse struct {
	Services []MedicalServiceResponse `json:"services"`
	Total    int                      `json:"total"`
}
