package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/sms_incident_system/internal/models"
	"github.com/shenikar/sms_incident_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMissingRequestID возвращается, когда входящий запрос не содержит
	// корреляционного идентификатора. Запись не создается, модель не вызывается.
	ErrMissingRequestID = errors.New("requestId missing in event")

	// ErrOracleResponseInvalid возвращается, когда ответ модели не разбирается
	// как JSON-объект. Запись не создается.
	ErrOracleResponseInvalid = errors.New("model response is not valid JSON")
)

// Шаблон промпта фиксирован: текст сообщения подставляется дословно,
// от модели ожидается JSON ровно с тремя ключами.
const extractionPromptTemplate = "Extract the following details from the incident description:\n" +
	"- Incident Location\n" +
	"- Incident Type\n" +
	"- Priority (High/Medium/Low)\n" +
	"Description: \"%s\"\n" +
	"Respond in JSON format with keys: incident_location, incident_type, priority."

// ExtractionOracle определяет контракт для внешнего сервиса генерации текста.
// Complete возвращает сгенерированный текст уже без транспортного конверта.
type ExtractionOracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IngestionService определяет контракт конвейера обработки входящих SMS
type IngestionService interface {
	ProcessSMS(ctx context.Context, requestID, description, contact string) (*models.Incident, error)
}

// extractedFields - поля, которые модель должна вернуть в JSON.
// Отсутствующие ключи дают пустые строки, дефолты подставляются при сборке записи.
type extractedFields struct {
	IncidentLocation string `json:"incident_location"`
	IncidentType     string `json:"incident_type"`
	Priority         string `json:"priority"`
}

type ingestionService struct {
	repo      IncidentRepository
	oracle    ExtractionOracle
	publisher webhook.IncidentEventPublisher
	logger    *logrus.Logger
}

func NewIngestionService(repo IncidentRepository, oracle ExtractionOracle, publisher webhook.IncidentEventPublisher, logger *logrus.Logger) IngestionService {
	return &ingestionService{
		repo:      repo,
		oracle:    oracle,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessSMS превращает одно входящее SMS в одну сохраненную запись об инциденте:
// строит промпт, вызывает модель, разбирает ее ответ, собирает запись и пишет
// ее в хранилище. Запись в бд - последний шаг, поэтому при любой ошибке до нее
// частичного состояния не остается.
func (s *ingestionService) ProcessSMS(ctx context.Context, requestID, description, contact string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "ingestion",
		"method":     "ProcessSMS",
		"request_id": requestID,
	})

	if requestID == "" {
		log.Warn("Inbound SMS request without request ID")
		return nil, ErrMissingRequestID
	}

	log.Info("Processing inbound SMS")

	prompt := fmt.Sprintf(extractionPromptTemplate, description)

	modelText, err := s.oracle.Complete(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Extraction oracle call failed")
		return nil, fmt.Errorf("service: oracle invocation failed: %w", err)
	}
	modelText = strings.TrimSpace(modelText)
	log.WithField("model_text", modelText).Debug("Model raw response")

	var fields extractedFields
	if err := json.Unmarshal([]byte(modelText), &fields); err != nil {
		log.WithError(err).Error("Model response is not valid JSON")
		return nil, fmt.Errorf("%w: %v", ErrOracleResponseInvalid, err)
	}

	incident := &models.Incident{
		IncidentID:       requestID,
		IncidentLocation: fields.IncidentLocation,
		IncidentType:     fields.IncidentType,
		Priority:         fields.Priority,
		Timestamp:        time.Now().UTC(),
		Status:           models.StatusOpen,
		Source:           contact,
		OriginalMessage:  description,
	}
	incident.ApplyDefaults()

	if err := s.repo.Upsert(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to persist incident")
		return nil, fmt.Errorf("service: could not persist incident: %w", err)
	}

	// Уведомление подписчиков асинхронное: ошибка публикации не влияет
	// на результат обработки SMS.
	if s.publisher != nil {
		event := webhook.IncidentEvent{
			IncidentID:   incident.IncidentID,
			IncidentType: incident.IncidentType,
			Priority:     incident.Priority,
			Status:       incident.Status,
			Timestamp:    incident.Timestamp,
			Incident:     incident,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).Warn("Failed to publish incident event")
		}
	}

	log.WithField("incident_id", incident.IncidentID).Info("Incident processed successfully")
	return incident, nil
}
