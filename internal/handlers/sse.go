package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/requestdata"
	"github.com/yungbote/pathforge-backend/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.SSEHub
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{
		log: log.With("handler", "SSEHandler"),
		hub: hub,
	}
}

func (h *SSEHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID := rd.UserID
	h.log.Info("SSE stream open", "user_id", userID.String())

	client := h.hub.NewSSEClient(userID)
	client.Logger = h.log.With("sse_client_id", client.ID)

	h.hub.AddChannel(client, "user:"+userID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "user_id", userID.String())
}
