package v1

import (
	"time"
)

// CreateIncidentRequest DTO для создания инцидента через CRUD API
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	IncidentID       string `json:"incident_id"`
	IncidentLocation string `json:"incident_location"`
	IncidentType     string `json:"incident_type"`
	Priority         string `json:"priority" validate:"required"`
	Timestamp        string `json:"timestamp"`
	Status           string `json:"status"`
	Source           string `json:"source" validate:"required"`
	OriginalMessage  string `json:"original_message" validate:"required"`
}

// UpdateStatusRequest DTO для смены статуса инцидента
// @Description DTO для смены статуса инцидента
type UpdateStatusRequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

// IncidentResponse DTO для ответа с записью об инциденте
// @Description DTO для ответа с записью об инциденте
type IncidentResponse struct {
	IncidentID       string    `json:"incident_id"`
	IncidentLocation string    `json:"incident_location"`
	IncidentType     string    `json:"incident_type"`
	Priority         string    `json:"priority"`
	Timestamp        time.Time `json:"timestamp"`
	Status           string    `json:"status"`
	Source           string    `json:"source"`
	OriginalMessage  string    `json:"original_message"`
}

// SMSProcessedResponse DTO для успешного ответа на входящее SMS
// @Description DTO для успешного ответа на входящее SMS
type SMSProcessedResponse struct {
	Message  string            `json:"message"`
	Incident *IncidentResponse `json:"incident"`
}

// SMSErrorResponse DTO для ошибки обработки входящего SMS
// @Description DTO для ошибки обработки входящего SMS
type SMSErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
