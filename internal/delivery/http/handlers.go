package http

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/dispatcher"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/ilindan-dev/safeguard/internal/service"
	"github.com/rs/zerolog"
	"io"
	"net/http"
	"strconv"
)

type Handlers struct {
	alerts   *service.AlertService
	contacts *service.ContactService
	profiles *service.ProfileService
	logger   zerolog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(
	alerts *service.AlertService,
	contacts *service.ContactService,
	profiles *service.ProfileService,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		alerts:   alerts,
		contacts: contacts,
		profiles: profiles,
		logger:   logger.With().Str("layer", "http_handler").Logger(),
	}
}

// RegisterRoutes sets up the routing for the alert API.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	router.POST("/functions/v1/send-emergency-sms", h.SendEmergencySMS)
	router.OPTIONS("/*path", h.Preflight)

	users := router.Group("/api/v1/users/:user_id")
	{
		users.POST("/sos", h.TriggerSOS)
		users.GET("/alerts", h.ListAlerts)
		users.GET("/alerts/:id", h.GetAlertByID)

		users.POST("/contacts", h.CreateContact)
		users.GET("/contacts", h.ListContacts)
		users.DELETE("/contacts/:id", h.DeleteContact)

		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
	}
}

// Preflight answers CORS preflight requests with an empty 200.
// The CORS headers themselves are added by the server middleware.
func (h *Handlers) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// SendEmergencySMS dispatches an alert to the contacts listed in the request.
// A body that fails to decode or validate is answered with 400 rather than 500,
// so callers can tell their own mistakes from provider configuration errors.
func (h *Handlers) SendEmergencySMS(c *gin.Context) {
	var req SendEmergencySMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	results, err := h.alerts.SendEmergencySMS(c.Request.Context(), toAlertRequest(&req))
	if err != nil {
		h.writeDispatchError(c, err)
		return
	}

	c.JSON(http.StatusOK, SendEmergencySMSResponse{
		Success: true,
		Results: toDispatchResultResponses(results),
	})
}

// TriggerSOS alerts every stored contact of the user.
func (h *Handlers) TriggerSOS(c *gin.Context) {
	userID := c.Param("user_id")

	var req TriggerSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	alert, err := h.alerts.TriggerSOS(c.Request.Context(), userID, req.Message, req.Location.toModel())
	if err != nil {
		h.writeDispatchError(c, err)
		return
	}

	c.JSON(http.StatusOK, TriggerSOSResponse{
		Success: true,
		AlertID: alert.ID,
		Status:  string(alert.Status),
		Results: toDispatchResultResponses(alert.Results),
	})
}

// writeDispatchError maps dispatch failures onto status codes.
func (h *Handlers) writeDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dispatcher.ErrNoContacts):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, dispatcher.ErrNotConfigured):
		h.logger.Error().Err(err).Msg("sms provider is not configured")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error().Err(err).Msg("failed to dispatch emergency alert")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to dispatch emergency alert"})
	}
}

// ListAlerts returns the user's most recent alerts.
func (h *Handlers) ListAlerts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	alerts, err := h.alerts.ListAlerts(c.Request.Context(), c.Param("user_id"), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list alerts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list alerts"})
		return
	}

	resp := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, toAlertResponse(a))
	}
	c.JSON(http.StatusOK, resp)
}

// GetAlertByID handles the HTTP request to retrieve an alert.
func (h *Handlers) GetAlertByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid alert ID format"})
		return
	}

	alert, err := h.alerts.GetAlert(c.Request.Context(), c.Param("user_id"), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Stringer("id", id).Msg("failed to get alert by id")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve alert"})
		return
	}

	c.JSON(http.StatusOK, toAlertResponse(alert))
}

// CreateContact handles the HTTP request for creating a new contact.
func (h *Handlers) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	contact, err := h.contacts.CreateContact(c.Request.Context(), c.Param("user_id"), req.Name, req.Phone, req.Relationship)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		case errors.Is(err, repo.ErrDuplicateRecord):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			h.logger.Error().Err(err).Msg("failed to create contact")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create contact"})
		}
		return
	}

	c.JSON(http.StatusCreated, toContactResponse(contact))
}

// ListContacts returns the user's contacts.
func (h *Handlers) ListContacts(c *gin.Context) {
	contacts, err := h.contacts.ListContacts(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list contacts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list contacts"})
		return
	}

	resp := make([]ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		resp = append(resp, toContactResponse(contact))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteContact handles the HTTP request to remove a contact.
func (h *Handlers) DeleteContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid contact ID format"})
		return
	}

	if err := h.contacts.DeleteContact(c.Request.Context(), c.Param("user_id"), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Stringer("id", id).Msg("failed to delete contact")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete contact"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetProfile returns the user's SOS settings.
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Msg("failed to get profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve profile"})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// UpdateProfile creates or replaces the user's SOS settings.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), c.Param("user_id"), req.DisplayName, req.AlertMessage)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}
