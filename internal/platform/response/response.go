package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 response with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error maps a domain error to its HTTP status. Unrecognized errors are
// treated as storage/internal failures and never leak details to the caller.
func Error(c *gin.Context, err error) {
	switch shared.KindOf(err) {
	case shared.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": shared.KindValidation})
	case shared.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": shared.KindNotFound})
	case shared.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": shared.KindConflict})
	case shared.KindHasActiveBookings:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": shared.KindHasActiveBookings})
	case shared.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "kind": shared.KindForbidden})
	case shared.KindInvalidState:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": shared.KindInvalidState})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
