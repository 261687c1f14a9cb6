package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/sms_incident_system/internal/service"
)

// Заголовок с корреляционным идентификатором запроса.
// Он же становится incident_id созданной записи.
const requestIDHeader = "X-Request-Id"

// @Summary Process an inbound SMS
// @Description Webhook for inbound SMS messages. Extracts structured incident fields from the message text via the language model and persists an incident record.
// @Tags SMS
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Body formData string false "Message text"
// @Param From formData string false "Originating contact"
// @Success 200 {object} SMSProcessedResponse
// @Failure 400 {object} SMSErrorResponse "Missing request identifier"
// @Failure 500 {object} SMSErrorResponse "Processing failure"
// @Router /post-sms [post]
func (h *Handler) processSMS(c *gin.Context) {
	log := h.logger.WithField("method", "processSMS")

	requestID := c.GetHeader(requestIDHeader)

	// Поля формы по умолчанию пустые: отсутствие Body или From не является ошибкой
	description := c.Request.PostFormValue("Body")
	contact := c.Request.PostFormValue("From")

	incident, err := h.ingestionService.ProcessSMS(c.Request.Context(), requestID, description, contact)
	if err != nil {
		if errors.Is(err, service.ErrMissingRequestID) {
			log.Warn("Inbound SMS rejected: no request ID")
			c.JSON(http.StatusBadRequest, SMSErrorResponse{Error: "requestId missing in event"})
			return
		}
		// Семантические и инфраструктурные ошибки не различаются наружу:
		// единый 500 с причиной, без частично созданной записи.
		log.WithError(err).Error("Failed to process inbound SMS")
		c.JSON(http.StatusInternalServerError, SMSErrorResponse{
			Error:   "Failed to process incident",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SMSProcessedResponse{
		Message:  "Incident processed",
		Incident: ModelToIncidentResponse(incident),
	})
}
