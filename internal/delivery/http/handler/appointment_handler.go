package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"medbook/internal/availability"
	"medbook/internal/delivery/dto"
	"medbook/internal/domain/entity"
	"medbook/internal/usecase"
	"medbook/pkg/response"
	"medbook/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.BookAppointment(r.Context(), organizationID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	var req dto.RescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.RescheduleAppointment(r.Context(), organizationID, appointmentID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to reschedule appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	if err := h.appointmentUsecase.CancelAppointment(r.Context(), organizationID, appointmentID); err != nil {
		h.writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	var unavailable *usecase.SlotUnavailableError
	if errors.As(err, &unavailable) {
		details := dto.SlotUnavailableDetails{
			Reason:               unavailable.Reason,
			RequiredAdvanceHours: unavailable.RequiredAdvanceHours,
		}
		if unavailable.Reason == entity.ReasonSlotConflict {
			response.Conflict(w, "Slot is already booked", details)
			return
		}
		response.UnprocessableEntity(w, "Slot is outside the booking window", details)
		return
	}

	switch {
	case errors.Is(err, usecase.ErrOrganizationNotFound):
		response.NotFound(w, "Organization not found")
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "Appointment does not belong to you")
	case errors.Is(err, usecase.ErrAppointmentAlreadyCancelled):
		response.Error(w, http.StatusConflict, "Appointment is already cancelled")
	case errors.Is(err, usecase.ErrAppointmentNotActive):
		response.Error(w, http.StatusConflict, "Appointment can no longer be changed")
	case errors.Is(err, usecase.ErrSlotTaken):
		response.Error(w, http.StatusConflict, "Slot was just booked by someone else")
	case errors.Is(err, usecase.ErrSlotNotOffered):
		response.UnprocessableEntity(w, "The doctor has no slot at that time", nil)
	case errors.Is(err, usecase.ErrUserNotInContext):
		response.Unauthorized(w, "")
	case errors.Is(err, availability.ErrInvalidDateRange),
		errors.Is(err, usecase.ErrInvalidTimeFormat),
		errors.Is(err, usecase.ErrInvalidIdentifier):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
