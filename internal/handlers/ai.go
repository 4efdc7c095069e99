package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathforge-backend/internal/services"
	"github.com/yungbote/pathforge-backend/internal/types"
)

type AIHandler struct {
	generationService services.RoadmapGenerationService
	tutorService      services.TutorService
}

func NewAIHandler(generationService services.RoadmapGenerationService, tutorService services.TutorService) *AIHandler {
	return &AIHandler{
		generationService: generationService,
		tutorService:      tutorService,
	}
}

func (ah *AIHandler) Generate(c *gin.Context) {
	var input types.RoadmapGenerationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	roadmap, err := ah.generationService.Generate(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"id":    roadmap.ID,
		"title": roadmap.Title,
	})
}

// Tutor streams the model's answer as raw text. Errors before the first
// byte go out as the JSON envelope; after that the stream just ends.
func (ah *AIHandler) Tutor(c *gin.Context) {
	var req struct {
		Message string                 `json:"message"`
		Context *services.TutorContext `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	started := false
	err := ah.tutorService.StreamAnswer(c.Request.Context(), req.Message, req.Context, func(delta string) {
		if !started {
			c.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
			c.Writer.Header().Set("Cache-Control", "no-cache")
			c.Writer.WriteHeader(http.StatusOK)
			started = true
		}
		_, _ = c.Writer.WriteString(delta)
		flusher.Flush()
	})
	if err != nil && !started && !errors.Is(err, context.Canceled) {
		RespondServiceError(c, err)
	}
}
