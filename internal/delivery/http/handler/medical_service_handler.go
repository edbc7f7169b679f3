package handler

import (
	"net/http"

	"medbook/internal/usecase"
	"medbook/pkg/response"
)

type MedicalServiceHandler struct {
	serviceUsecase usecase.MedicalServiceUsecase
}

func NewMedicalServiceHandler(serviceUsecase usecase.MedicalServiceUsecase) *MedicalServiceHandler {
	return &MedicalServiceHandler{serviceUsecase: serviceUsecase}
}

func (h *MedicalServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := pathUUID(w, r, "organizationId", "organization ID")
	if !ok {
		return
	}

	services, err := h.serviceUsecase.ListServices(r.Context(), organizationID)
	if err != nil {
		response.InternalServerError(w, "Failed to get services")
		return
	}

	response.Success(w, http.StatusOK, "Services retrieved successfully", services)
}
