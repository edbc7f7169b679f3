package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"medbook/internal/delivery/dto"
	"medbook/internal/usecase"
	"medbook/pkg/response"
	"medbook/pkg/validator"

	"github.com/google/uuid"
)

type WeeklyScheduleHandler struct {
	scheduleUsecase usecase.WeeklyScheduleUsecase
	validator       *validator.CustomValidator
}

func NewWeeklyScheduleHandler(scheduleUsecase usecase.WeeklyScheduleUsecase, validator *validator.CustomValidator) *WeeklyScheduleHandler {
	return &WeeklyScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		validator:       validator,
	}
}

func (h *WeeklyScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}

	var doctorID *uuid.UUID
	if raw := r.URL.Query().Get("doctorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid doctor ID")
			return
		}
		doctorID = &id
	}

	schedules, err := h.scheduleUsecase.ListSchedules(r.Context(), organizationID, doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to get schedules")
		return
	}

	response.Success(w, http.StatusOK, "Schedules retrieved successfully", schedules)
}

func (h *WeeklyScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(w, r, "id", "schedule ID")
	if !ok {
		return
	}

	schedule, err := h.scheduleUsecase.GetSchedule(r.Context(), organizationID, scheduleID)
	if err != nil {
		h.writeError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", schedule)
}

func (h *WeeklyScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	schedule, err := h.scheduleUsecase.CreateSchedule(r.Context(), organizationID, req)
	if err != nil {
		h.writeError(w, err, "Failed to create schedule")
		return
	}

	response.Success(w, http.StatusCreated, "Schedule created successfully", schedule)
}

func (h *WeeklyScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(w, r, "id", "schedule ID")
	if !ok {
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	schedule, err := h.scheduleUsecase.UpdateSchedule(r.Context(), organizationID, scheduleID, req)
	if err != nil {
		h.writeError(w, err, "Failed to update schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule updated successfully", schedule)
}

func (h *WeeklyScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}
	scheduleID, ok := pathUUID(w, r, "id", "schedule ID")
	if !ok {
		return
	}

	if err := h.scheduleUsecase.DeleteSchedule(r.Context(), organizationID, scheduleID); err != nil {
		h.writeError(w, err, "Failed to delete schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule deleted successfully", nil)
}

func (h *WeeklyScheduleHandler) decode(w http.ResponseWriter, r *http.Request) (*dto.WeeklyScheduleRequest, bool) {
	var req dto.WeeklyScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return nil, false
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return nil, false
	}
	return &req, true
}

func (h *WeeklyScheduleHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrScheduleNotFound):
		response.NotFound(w, "Schedule not found")
	case errors.Is(err, usecase.ErrInvalidTimeFormat),
		errors.Is(err, usecase.ErrInvalidTimeRange),
		errors.Is(err, usecase.ErrInvalidDayOfWeek),
		errors.Is(err, usecase.ErrInvalidIdentifier):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
