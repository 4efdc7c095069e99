package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathforge-backend/internal/services"
)

// Envelope is the response shape for every JSON endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Error: message})
}

// RespondServiceError maps service errors onto the envelope. Validation
// messages pass through verbatim; everything else gets a canned message so
// upstream details never reach the client.
func RespondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		RespondError(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrGenerationFailed):
		RespondError(c, http.StatusInternalServerError, "Failed to generate roadmap. Please try again.")
	default:
		RespondError(c, http.StatusInternalServerError, "Something went wrong")
	}
}
