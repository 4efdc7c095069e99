package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathforge-backend/internal/sse"
	"github.com/yungbote/pathforge-backend/internal/ssedata"
)

// AttachSSEData puts an event buffer on the request context and broadcasts
// whatever the handler queued once it has returned. Events are only sent
// after the handler (and its transactions) finished, so a rolled-back
// request never notifies anyone.
func AttachSSEData(hub *sse.SSEHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ssedata.WithSSEData(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ssd := ssedata.GetSSEData(c.Request.Context()); ssd != nil {
			for _, msg := range ssd.Messages {
				hub.Broadcast(msg)
			}
		}
	}
}
