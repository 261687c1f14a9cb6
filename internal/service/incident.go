package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/sms_incident_system/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrIncidentNotFound возвращается, когда запись с указанным incident_id отсутствует.
// Хэндлер по этой ошибке детерминированно отдает 404.
var ErrIncidentNotFound = errors.New("incident not found")

// IncidentRepository определяет контракт для работы с хранилищем инцидентов
type IncidentRepository interface {
	Upsert(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	ListIncidents(ctx context.Context, startDate, endDate *time.Time) ([]*models.Incident, error)
	GetIncidentFromCache(ctx context.Context, id string) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id string) error
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id, status string) error
	DeleteIncident(ctx context.Context, id string) error
	ListIncidents(ctx context.Context, startDate, endDate *time.Time) ([]*models.Incident, error)
}

type incidentService struct {
	repo   IncidentRepository
	logger *logrus.Logger
}

func NewIncidentService(repo IncidentRepository, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:   repo,
		logger: logger,
	}
}

// CreateIncident создает инцидент через CRUD API. Если incident_id или
// timestamp не переданы, они генерируются на месте.
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
	})
	log.Info("Attempting to create a new incident")

	if incident.IncidentID == "" {
		incident.IncidentID = uuid.New().String()
	}
	incident.ApplyDefaults()

	if err := s.repo.Upsert(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, incident.IncidentID); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache after create")
	}

	log.WithField("incident_id", incident.IncidentID).Info("Incident created successfully")
	return nil
}

// GetIncident получает инцидент по ID, сначала из кеша, потом из бд
func (s *incidentService) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Info("Incident fetched from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Warn("Incident not found")
			return nil, err
		}
		log.WithError(err).Error("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// UpdateStatus меняет статус существующего инцидента. Остальные поля
// записи не изменяются.
func (s *incidentService) UpdateStatus(ctx context.Context, id, status string) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateStatus",
		"incident_id": id,
		"status":      status,
	})
	log.Info("Attempting to update incident status")

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Warn("Attempted to update status of a non-existent incident")
			return err
		}
		return fmt.Errorf("service: could not check incident before status update: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		log.WithError(err).Error("Failed to update incident status in repository")
		return fmt.Errorf("service: could not update incident status: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache after status update")
	}

	log.Info("Incident status updated successfully")
	return nil
}

// DeleteIncident удаляет инцидент из хранилища
func (s *incidentService) DeleteIncident(ctx context.Context, id string) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": id,
	})
	log.Info("Attempting to delete incident")

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Warn("Attempted to delete a non-existent incident")
			return err
		}
		return fmt.Errorf("service: could not check incident before delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete incident in repository")
		return fmt.Errorf("service: could not delete incident: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache after delete")
	}

	log.Info("Incident deleted successfully")
	return nil
}

// ListIncidents возвращает список инцидентов с опциональной фильтрацией по времени
func (s *incidentService) ListIncidents(ctx context.Context, startDate, endDate *time.Time) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.ListIncidents(ctx, startDate, endDate)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}
