package ssedata

import (
	"context"

	"github.com/yungbote/pathforge-backend/internal/sse"
)

type key struct{}

var sseDataKey key

// SSEData buffers events appended by services during a request so they are
// only broadcast after the handler (and its transactions) complete.
type SSEData struct {
	Messages []sse.SSEMessage
}

func WithSSEData(ctx context.Context) context.Context {
	data := &SSEData{
		Messages: make([]sse.SSEMessage, 0),
	}
	return context.WithValue(ctx, sseDataKey, data)
}

func GetSSEData(ctx context.Context) *SSEData {
	val := ctx.Value(sseDataKey)
	ssd, ok := val.(*SSEData)
	if !ok {
		return nil
	}
	return ssd
}

func (d *SSEData) AppendMessage(msg sse.SSEMessage) {
	d.Messages = append(d.Messages, msg)
}

// AppendMessage buffers a message on the request's SSEData; it is a no-op
// when the context carries none (background jobs, tests).
func AppendMessage(ctx context.Context, msg sse.SSEMessage) {
	if d := GetSSEData(ctx); d != nil {
		d.AppendMessage(msg)
	}
}
