package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pousadapro/service-booking/internal/application"
	"github.com/pousadapro/service-booking/internal/domain/plan"
	"github.com/pousadapro/service-booking/internal/platform/auth"
	"github.com/pousadapro/service-booking/internal/platform/middleware"
	"github.com/pousadapro/service-booking/internal/platform/response"
)

// CalendarHandler handles iCal export, availability views and external feed
// subscriptions.
type CalendarHandler struct {
	service *application.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(service *application.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// RegisterRoutes registers all calendar routes on the given router group.
func (h *CalendarHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	properties := r.Group("/api/v1/properties")
	properties.Use(authMW)
	{
		properties.GET("/:id/calendar.ics", h.ExportICS)
		properties.GET("/:id/availability", h.Availability)
	}

	syncs := r.Group("/api/v1/calendar-syncs")
	syncs.Use(authMW)
	{
		syncs.POST("", h.CreateSync)
		syncs.GET("", h.ListSyncs)
		syncs.PUT("/:id", h.UpdateSync)
		syncs.DELETE("/:id", h.DeleteSync)
	}
}

// ExportICS handles GET /api/v1/properties/:id/calendar.ics.
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid property ID")
		return
	}

	feed, err := h.service.ExportICS(c.Request.Context(), userID, propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="calendar.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// Availability handles GET /api/v1/properties/:id/availability.
func (h *CalendarHandler) Availability(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid property ID")
		return
	}

	result, err := h.service.Availability(c.Request.Context(), userID, propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateSync handles POST /api/v1/calendar-syncs. Availability depends on the
// caller's plan.
func (h *CalendarHandler) CreateSync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateSync(c.Request.Context(), userID, plan.Plan(middleware.GetUserPlan(c)), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListSyncs handles GET /api/v1/calendar-syncs.
func (h *CalendarHandler) ListSyncs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListSyncs(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateSync handles PUT /api/v1/calendar-syncs/:id.
func (h *CalendarHandler) UpdateSync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	syncID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid sync ID")
		return
	}

	var req application.UpdateSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateSync(c.Request.Context(), userID, syncID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteSync handles DELETE /api/v1/calendar-syncs/:id.
func (h *CalendarHandler) DeleteSync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	syncID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid sync ID")
		return
	}

	if err := h.service.DeleteSync(c.Request.Context(), userID, syncID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
