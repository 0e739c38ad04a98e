package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pousadapro/service-booking/internal/application"
	"github.com/pousadapro/service-booking/internal/platform/auth"
	"github.com/pousadapro/service-booking/internal/platform/middleware"
	"github.com/pousadapro/service-booking/internal/platform/response"
)

// ClientHandler serves the derived client list.
type ClientHandler struct {
	service *application.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service *application.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// RegisterRoutes registers the client routes on the given router group.
func (h *ClientHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	clients := r.Group("/api/v1/clients")
	clients.Use(middleware.AuthMiddleware(jwtManager))
	{
		clients.GET("", h.ListClients)
	}
}

// ListClients handles GET /api/v1/clients. The list is projected from the
// caller's bookings on every request.
func (h *ClientHandler) ListClients(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListClients(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
