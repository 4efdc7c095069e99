package services

import (
	"context"
	"strings"

	"github.com/yungbote/pathforge-backend/internal/logger"
)

const tutorTemperature = 0.7

type TutorService interface {
	StreamAnswer(ctx context.Context, message string, tctx *TutorContext, onDelta func(delta string)) error
}

type tutorService struct {
	log      *logger.Logger
	aiClient AIClient
}

func NewTutorService(log *logger.Logger, aiClient AIClient) TutorService {
	serviceLog := log.With("service", "TutorService")
	return &tutorService{
		log:      serviceLog,
		aiClient: aiClient,
	}
}

// StreamAnswer forwards model deltas to onDelta as they arrive. The stream
// follows ctx, so a dropped connection stops the upstream call.
func (ts *tutorService) StreamAnswer(ctx context.Context, message string, tctx *TutorContext, onDelta func(delta string)) error {
	if strings.TrimSpace(message) == "" {
		return NewValidationError("Message is required")
	}

	var contextValue TutorContext
	if tctx != nil {
		contextValue = *tctx
	}
	prompt := BuildTutorPrompt(message, contextValue)

	_, err := ts.aiClient.StreamText(ctx, prompt, tutorTemperature, onDelta)
	if err != nil {
		ts.log.Warn("Tutor stream failed", "error", err)
		return err
	}
	return nil
}
