package converter

import (
	"medbook/internal/delivery/dto"
	"medbook/internal/domain/entity"
)

func MedicalServicesToResponse(services []entity.MedicalService) *dto.MedicalServiceListResponse {
	responses := make([]dto.MedicalServiceResponse, len(services))
	for i, service := range services {
		responses[i] = dto.MedicalServiceResponse{
			ID:              service.ID,
			Name:            service.Name,
			Description:     service.Description,
			DurationMinutes: service.DurationMinutes,
			Price:           service.Price,
		}
	}
	return &dto.MedicalServiceListResponse{
		Services: responses,
		Total:    len(responses),
	}
}
