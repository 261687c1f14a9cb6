package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/sms_incident_system/internal/config"
	"github.com/shenikar/sms_incident_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService  service.IncidentService
	ingestionService service.IngestionService
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

func NewHandler(incidentService service.IncidentService, ingestionService service.IngestionService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService:  incidentService,
		ingestionService: ingestionService,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// parseDateFilter разбирает опциональную границу фильтра по времени
func parseDateFilter(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// @Summary Get a list of incidents
// @Description Get all incidents with optional timestamp range filtering. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param start_date query string false "Lower timestamp bound (RFC3339)"
// @Param end_date query string false "Upper timestamp bound (RFC3339)"
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid date filter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	startDate, err := parseDateFilter(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected RFC3339 timestamp"})
		return
	}
	endDate, err := parseDateFilter(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected RFC3339 timestamp"})
		return
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), startDate, endDate)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident record by its incident_id. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIncidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Incident with ID '%s' not found", id)})
			return
		}
		log.WithError(err).Error("Failed to get incident from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Delete an incident
// @Description Delete an incident record by its incident_id. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} map[string]string "Deletion confirmation"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [delete]
func (h *Handler) deleteIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "deleteIncident").WithField("id", id)

	if err := h.incidentService.DeleteIncident(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrIncidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Incident %s not found", id)})
			return
		}
		log.WithError(err).Error("Failed to delete incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete incident"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Incident %s deleted successfully", id)})
}

// @Summary Update incident status
// @Description Update the status of an existing incident. Only the status field changes. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param status body UpdateStatusRequest true "Status update request"
// @Success 200 {object} map[string]string "Update confirmation"
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /update-status [put]
func (h *Handler) updateStatus(c *gin.Context) {
	var input UpdateStatusRequest
	log := h.logger.WithField("method", "updateStatus")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.incidentService.UpdateStatus(c.Request.Context(), input.IncidentID, input.Status); err != nil {
		if errors.Is(err, service.ErrIncidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Incident with ID '%s' not found", input.IncidentID)})
			return
		}
		log.WithError(err).Error("Failed to update incident status in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update incident status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Incident %s status updated to %s", input.IncidentID, input.Status)})
}

// @Summary Create a new incident
// @Description Create a new incident record via the CRUD API. Generates incident_id and timestamp when absent. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /create_incident [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(model))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
