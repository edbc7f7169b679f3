package handler

import (
	"errors"
	"net/http"
	"strconv"

	"medbook/internal/availability"
	"medbook/internal/delivery/dto"
	"medbook/internal/usecase"
	"medbook/pkg/response"
	"medbook/pkg/validator"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// GetAvailability handles GET /availability?organizationId=&startDate=&endDate=
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.AvailabilityRequest{
		OrganizationID: q.Get("organizationId"),
		StartDate:      q.Get("startDate"),
		EndDate:        q.Get("endDate"),
		ServiceID:      q.Get("serviceId"),
		DoctorID:       q.Get("doctorId"),
		LocationID:     q.Get("locationId"),
		UserRole:       q.Get("userRole"),
	}

	if raw := q.Get("useStandardRules"); raw != "" {
		standard, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "useStandardRules must be true or false")
			return
		}
		req.UseStandardRules = standard
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	days, err := h.availabilityUsecase.GetAvailability(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidDateRange),
			errors.Is(err, usecase.ErrRangeTooLarge),
			errors.Is(err, usecase.ErrInvalidIdentifier):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to load availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "", days)
}
