package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pathforge-backend/internal/services"
)

type RoadmapHandler struct {
	roadmapService services.RoadmapService
}

func NewRoadmapHandler(roadmapService services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{roadmapService: roadmapService}
}

func (rh *RoadmapHandler) List(c *gin.Context) {
	summaries, err := rh.roadmapService.ListSummaries(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, summaries)
}

func (rh *RoadmapHandler) Get(c *gin.Context) {
	roadmapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not found")
		return
	}

	view, err := rh.roadmapService.GetFull(c.Request.Context(), roadmapID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (rh *RoadmapHandler) Delete(c *gin.Context) {
	roadmapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not found")
		return
	}

	if err := rh.roadmapService.Delete(c.Request.Context(), roadmapID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, nil)
}

func (rh *RoadmapHandler) UpdateTopicStatus(c *gin.Context) {
	roadmapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not found")
		return
	}
	topicID := c.Param("topicId")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := rh.roadmapService.UpdateTopicStatus(c.Request.Context(), roadmapID, topicID, req.Status); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, nil)
}
