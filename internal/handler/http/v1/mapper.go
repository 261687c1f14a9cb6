package v1

import (
	"time"

	"github.com/shenikar/sms_incident_system/internal/models"
)

// DTOToIncidentModel преобразует DTO создания в доменную модель.
// Некорректный timestamp игнорируется: он будет сгенерирован при сборке записи.
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	incident := &models.Incident{
		IncidentID:       dto.IncidentID,
		IncidentLocation: dto.IncidentLocation,
		IncidentType:     dto.IncidentType,
		Priority:         dto.Priority,
		Status:           dto.Status,
		Source:           dto.Source,
		OriginalMessage:  dto.OriginalMessage,
	}
	if dto.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, dto.Timestamp); err == nil {
			incident.Timestamp = ts
		}
	}
	return incident
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		IncidentID:       model.IncidentID,
		IncidentLocation: model.IncidentLocation,
		IncidentType:     model.IncidentType,
		Priority:         model.Priority,
		Timestamp:        model.Timestamp,
		Status:           model.Status,
		Source:           model.Source,
		OriginalMessage:  model.OriginalMessage,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}
