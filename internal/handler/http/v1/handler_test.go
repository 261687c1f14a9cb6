package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/sms_incident_system/internal/config"
	"github.com/shenikar/sms_incident_system/internal/models"
	"github.com/shenikar/sms_incident_system/internal/service"
	"github.com/shenikar/sms_incident_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*Handler, *mocks.MockIncidentService, *mocks.MockIngestionService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockIncidentService(ctrl)
	mockIngestion := mocks.NewMockIngestionService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, mockIngestion, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router)

	return handler, mockService, mockIngestion, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func apiKeyHeader() map[string]string {
	return map[string]string{"X-API-Key": "test-api-key"}
}

func TestGetIncident_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	expectedIncident := &models.Incident{
		IncidentID:       "req-abc",
		IncidentLocation: "5th and Main",
		IncidentType:     "Fire",
		Priority:         models.PriorityHigh,
		Timestamp:        time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
		Status:           models.StatusOpen,
		Source:           "+15551234567",
		OriginalMessage:  "Fire at 5th and Main, please hurry",
	}

	mockService.EXPECT().GetIncident(gomock.Any(), "req-abc").Return(expectedIncident, nil).Times(1)

	w := makeRequest(router, "GET", "/v1/incidents/req-abc", nil, apiKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, expectedIncident.IncidentID, resp.IncidentID)
	assert.Equal(t, expectedIncident.IncidentLocation, resp.IncidentLocation)
	assert.Equal(t, expectedIncident.IncidentType, resp.IncidentType)
	assert.Equal(t, expectedIncident.Priority, resp.Priority)
	assert.Equal(t, expectedIncident.Status, resp.Status)
	assert.Equal(t, expectedIncident.Source, resp.Source)
	assert.Equal(t, expectedIncident.OriginalMessage, resp.OriginalMessage)
	assert.True(t, expectedIncident.Timestamp.Equal(resp.Timestamp))
}

func TestGetIncident_NotFound(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		GetIncident(gomock.Any(), "missing").
		Return(nil, service.ErrIncidentNotFound).
		Times(1)

	w := makeRequest(router, "GET", "/v1/incidents/missing", nil, apiKeyHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestGetIncident_Unauthorized(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/v1/incidents/req-abc", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestListIncidents_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	incidents := []*models.Incident{
		{IncidentID: "req-1", IncidentType: "Fire"},
		{IncidentID: "req-2", IncidentType: "Flood"},
	}

	mockService.EXPECT().ListIncidents(gomock.Any(), nil, nil).Return(incidents, nil).Times(1)

	w := makeRequest(router, "GET", "/v1/incidents", nil, apiKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
}

func TestListIncidents_WithDateFilter(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	mockService.EXPECT().
		ListIncidents(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, gotStart, gotEnd *time.Time) ([]*models.Incident, error) {
			require.NotNil(t, gotStart)
			require.NotNil(t, gotEnd)
			assert.True(t, start.Equal(*gotStart))
			assert.True(t, end.Equal(*gotEnd))
			return []*models.Incident{}, nil
		}).Times(1)

	url := "/v1/incidents?start_date=2026-08-01T00%3A00%3A00Z&end_date=2026-08-31T00%3A00%3A00Z"
	w := makeRequest(router, "GET", url, nil, apiKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListIncidents_InvalidDateFilter(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().ListIncidents(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/v1/incidents?start_date=not-a-date", nil, apiKeyHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid start_date")
}

func TestDeleteIncident_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().DeleteIncident(gomock.Any(), "req-abc").Return(nil).Times(1)

	w := makeRequest(router, "DELETE", "/v1/incidents/req-abc", nil, apiKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted successfully")
}

func TestDeleteIncident_NotFound(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		DeleteIncident(gomock.Any(), "missing").
		Return(fmt.Errorf("repo: %w", service.ErrIncidentNotFound)).
		Times(1)

	w := makeRequest(router, "DELETE", "/v1/incidents/missing", nil, apiKeyHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestUpdateStatus_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	reqBody := UpdateStatusRequest{
		IncidentID: "req-abc",
		Status:     "Resolved",
	}

	mockService.EXPECT().UpdateStatus(gomock.Any(), "req-abc", "Resolved").Return(nil).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", "/v1/update-status", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "status updated to Resolved")
}

func TestUpdateStatus_NotFound(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	reqBody := UpdateStatusRequest{
		IncidentID: "missing",
		Status:     "Closed",
	}

	mockService.EXPECT().
		UpdateStatus(gomock.Any(), "missing", "Closed").
		Return(service.ErrIncidentNotFound).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", "/v1/update-status", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestUpdateStatus_ValidationError(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	reqBody := UpdateStatusRequest{ // Отсутствует IncidentID
		Status: "Closed",
	}

	mockService.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "PUT", "/v1/update-status", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIncident_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{
		IncidentLocation: "5th and Main",
		IncidentType:     "Fire",
		Priority:         models.PriorityHigh,
		Source:           "+15551234567",
		OriginalMessage:  "Fire at 5th and Main, please hurry",
	}

	mockService.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, reqBody.IncidentLocation, inc.IncidentLocation)
			assert.Equal(t, reqBody.Priority, inc.Priority)
			// Симулируем генерацию идентификатора сервисом
			inc.IncidentID = "generated-id"
			inc.ApplyDefaults()
			return nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/v1/create_incident", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "generated-id", resp.IncidentID)
	assert.Equal(t, models.StatusOpen, resp.Status)
}

func TestCreateIncident_ValidationError(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{ // Отсутствуют обязательные priority, source, original_message
		IncidentType: "Fire",
	}

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/v1/create_incident", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIncident_ServiceError(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{
		Priority:        models.PriorityMedium,
		Source:          "operator",
		OriginalMessage: "manual report",
	}
	serviceError := errors.New("db down")

	mockService.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Return(serviceError).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/v1/create_incident", bytes.NewBuffer(bodyBytes), apiKeyHeader())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthCheck(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/v1/system/health", nil, apiKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
