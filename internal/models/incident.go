package models

import (
	"time"
)

// Статусы и приоритеты инцидента. Приоритет намеренно не валидируется
// строго: модель извлечения может вернуть произвольную строку.
const (
	StatusOpen = "Open"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"

	DefaultLocation = "Unknown"
	DefaultType     = "General"
	DefaultPriority = PriorityMedium
)

// Incident представляет запись об инциденте, созданную из входящего SMS
// или через CRUD API. IncidentID уникален и неизменяем после создания,
// изменяемым остается только Status.
type Incident struct {
	IncidentID       string    `json:"incident_id"`
	IncidentLocation string    `json:"incident_location"`
	IncidentType     string    `json:"incident_type"`
	Priority         string    `json:"priority"`
	Timestamp        time.Time `json:"timestamp"`
	Status           string    `json:"status"`
	Source           string    `json:"source"`
	OriginalMessage  string    `json:"original_message"`
}

// ApplyDefaults заполняет пустые поля значениями по умолчанию.
// Дефолты применяются один раз при создании записи, а не при каждом чтении.
func (i *Incident) ApplyDefaults() {
	if i.IncidentLocation == "" {
		i.IncidentLocation = DefaultLocation
	}
	if i.IncidentType == "" {
		i.IncidentType = DefaultType
	}
	if i.Priority == "" {
		i.Priority = DefaultPriority
	}
	if i.Status == "" {
		i.Status = StatusOpen
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now().UTC()
	}
}
