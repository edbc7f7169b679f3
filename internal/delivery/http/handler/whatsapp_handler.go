package handler

import (
	"errors"
	"net/http"

	"medbook/internal/service"
	"medbook/internal/usecase"
	"medbook/pkg/response"
)

type WhatsAppHandler struct {
	whatsAppUsecase usecase.WhatsAppUsecase
}

func NewWhatsAppHandler(whatsAppUsecase usecase.WhatsAppUsecase) *WhatsAppHandler {
	return &WhatsAppHandler{whatsAppUsecase: whatsAppUsecase}
}

func (h *WhatsAppHandler) GetConnectionState(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}

	state, err := h.whatsAppUsecase.GetConnectionState(r.Context(), organizationID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Connection state retrieved successfully", state)
}

func (h *WhatsAppHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}

	qr, err := h.whatsAppUsecase.GetQRCode(r.Context(), organizationID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "QR code retrieved successfully", qr)
}

func (h *WhatsAppHandler) writeError(w http.ResponseWriter, err error) {
	var rejection *service.PollRejection
	if errors.As(err, &rejection) {
		if errors.Is(err, service.ErrPollCircuitOpen) {
			response.TooManyRequests(w, "Too many gateway requests, polling is paused", rejection.RetryAfter)
			return
		}
		response.TooManyRequests(w, "Polling too frequently", rejection.RetryAfter)
		return
	}

	switch {
	case errors.Is(err, usecase.ErrOrganizationNotFound):
		response.NotFound(w, "Organization not found")
	case errors.Is(err, usecase.ErrWhatsAppNotConfigured):
		response.NotFound(w, "WhatsApp is not configured for this organization")
	default:
		response.BadGateway(w, "WhatsApp gateway is unavailable")
	}
}
