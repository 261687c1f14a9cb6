package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shenikar/sms_incident_system/internal/models"
	"github.com/shenikar/sms_incident_system/internal/service/mocks"
	"github.com/shenikar/sms_incident_system/internal/webhook"
	webhook_mocks "github.com/shenikar/sms_incident_system/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestIngestionService — вспомогательная функция для создания конвейера с моками.
func newTestIngestionService(t *testing.T) (*ingestionService, *mocks.MockIncidentRepository, *mocks.MockExtractionOracle, *webhook_mocks.MockIncidentEventPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	oracleMock := mocks.NewMockExtractionOracle(ctrl)
	publisherMock := webhook_mocks.NewMockIncidentEventPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := NewIngestionService(repoMock, oracleMock, publisherMock, logger)
	return svc.(*ingestionService), repoMock, oracleMock, publisherMock
}

func TestProcessSMS_MissingRequestID(t *testing.T) {
	// Подготовка: ожиданий нет — ни модель, ни хранилище не должны вызываться
	svc, _, _, _ := newTestIngestionService(t)
	ctx := context.Background()

	// Действие
	incident, err := svc.ProcessSMS(ctx, "", "Fire at 5th and Main", "+15551234567")

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequestID)
	assert.Nil(t, incident)
}

func TestProcessSMS_Success_AllFieldsExtracted(t *testing.T) {
	// Подготовка
	svc, repoMock, oracleMock, publisherMock := newTestIngestionService(t)
	ctx := context.Background()
	requestID := "req-123"
	description := "Fire at 5th and Main, please hurry"
	contact := "+15551234567"

	// Ожидания
	oracleMock.EXPECT().
		Complete(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			// Промпт встраивает текст сообщения дословно
			assert.Contains(t, prompt, description)
			assert.Contains(t, prompt, "incident_location, incident_type, priority")
			return `{"incident_location":"5th and Main","incident_type":"Fire","priority":"High"}`, nil
		}).Times(1)

	var stored *models.Incident
	repoMock.EXPECT().
		Upsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			stored = inc
			return nil
		}).Times(1)

	publisherMock.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.IncidentEvent) error {
			assert.Equal(t, requestID, event.IncidentID)
			assert.Equal(t, models.PriorityHigh, event.Priority)
			return nil
		}).Times(1)

	// Действие
	incident, err := svc.ProcessSMS(ctx, requestID, description, contact)

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, incident)
	assert.Equal(t, requestID, incident.IncidentID)
	assert.Equal(t, "5th and Main", incident.IncidentLocation)
	assert.Equal(t, "Fire", incident.IncidentType)
	assert.Equal(t, models.PriorityHigh, incident.Priority)
	assert.Equal(t, models.StatusOpen, incident.Status)
	assert.Equal(t, contact, incident.Source)
	assert.Equal(t, description, incident.OriginalMessage)
	assert.False(t, incident.Timestamp.IsZero())
	assert.Same(t, incident, stored)
}

func TestProcessSMS_Defaults_WhenKeysMissing(t *testing.T) {
	// Подготовка
	svc, repoMock, oracleMock, publisherMock := newTestIngestionService(t)
	ctx := context.Background()

	// Ожидания: модель вернула только один ключ из трех
	oracleMock.EXPECT().
		Complete(ctx, gomock.Any()).
		Return(`{"incident_type":"Flood"}`, nil).
		Times(1)

	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := svc.ProcessSMS(ctx, "req-456", "Water everywhere", "+15550000000")

	// Проверки: недостающие поля заполнены дефолтами
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLocation, incident.IncidentLocation)
	assert.Equal(t, "Flood", incident.IncidentType)
	assert.Equal(t, models.DefaultPriority, incident.Priority)
}

func TestProcessSMS_OracleReturnsNonJSON(t *testing.T) {
	// Подготовка: запись не должна создаваться, поэтому ожиданий на Upsert нет
	svc, _, oracleMock, _ := newTestIngestionService(t)
	ctx := context.Background()

	// Ожидания
	oracleMock.EXPECT().
		Complete(ctx, gomock.Any()).
		Return("Sorry, I could not determine the incident details.", nil).
		Times(1)

	// Действие
	incident, err := svc.ProcessSMS(ctx, "req-789", "something happened", "+15551112222")

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracleResponseInvalid)
	assert.Nil(t, incident)
}

func TestProcessSMS_OracleCallFails(t *testing.T) {
	// Подготовка
	svc, _, oracleMock, _ := newTestIngestionService(t)
	ctx := context.Background()
	oracleErr := errors.New("model unreachable")

	// Ожидания
	oracleMock.EXPECT().
		Complete(ctx, gomock.Any()).
		Return("", oracleErr).
		Times(1)

	// Действие
	incident, err := svc.ProcessSMS(ctx, "req-101", "anything", "+15553334444")

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, oracleErr)
	assert.Nil(t, incident)
}

func TestProcessSMS_PersistFails(t *testing.T) {
	// Подготовка: событие не публикуется, если запись не сохранилась
	svc, repoMock, oracleMock, _ := newTestIngestionService(t)
	ctx := context.Background()
	dbErr := errors.New("store unreachable")

	// Ожидания
	oracleMock.EXPECT().
		Complete(ctx, gomock.Any()).
		Return(`{"incident_type":"Fire"}`, nil).
		Times(1)
	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(dbErr).Times(1)

	// Действие
	incident, err := svc.ProcessSMS(ctx, "req-102", "fire", "+15555556666")

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, incident)
}

func TestProcessSMS_PublishFailureDoesNotFailPipeline(t *testing.T) {
	// Подготовка
	svc, repoMock, oracleMock, publisherMock := newTestIngestionService(t)
	ctx := context.Background()

	// Ожидания
	oracleMock.EXPECT().
		Complete(ctx, gomock.Any()).
		Return(`{"incident_type":"Fire","priority":"High"}`, nil).
		Times(1)
	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("queue down")).Times(1)

	// Действие
	incident, err := svc.ProcessSMS(ctx, "req-103", "fire", "+15557778888")

	// Проверки: ошибка публикации не влияет на результат обработки
	require.NoError(t, err)
	require.NotNil(t, incident)
}

func TestProcessSMS_DistinctRequestIDsCreateDistinctRecords(t *testing.T) {
	// Подготовка: идемпотентность не гарантируется — одинаковый текст
	// с разными идентификаторами дает две разные записи
	svc, repoMock, oracleMock, publisherMock := newTestIngestionService(t)
	ctx := context.Background()
	description := "Fire at 5th and Main, please hurry"

	// Ожидания
	oracleMock.EXPECT().
		Complete(ctx, gomock.Any()).
		Return(`{"incident_location":"5th and Main","incident_type":"Fire","priority":"High"}`, nil).
		Times(2)

	storedIDs := make([]string, 0, 2)
	repoMock.EXPECT().
		Upsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			storedIDs = append(storedIDs, inc.IncidentID)
			return nil
		}).Times(2)
	publisherMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(2)

	// Действие
	for i := 1; i <= 2; i++ {
		_, err := svc.ProcessSMS(ctx, fmt.Sprintf("req-%d", i), description, "+15559990000")
		require.NoError(t, err)
	}

	// Проверки
	require.Len(t, storedIDs, 2)
	assert.NotEqual(t, storedIDs[0], storedIDs[1])
}
