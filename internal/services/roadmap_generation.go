package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/types"
)

const generationTemperature = 0.7

type RoadmapGenerationService interface {
	Generate(ctx context.Context, input types.RoadmapGenerationInput) (*types.Roadmap, error)
}

type roadmapGenerationService struct {
	db             *gorm.DB
	log            *logger.Logger
	aiClient       AIClient
	roadmapService RoadmapService
}

func NewRoadmapGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	aiClient AIClient,
	roadmapService RoadmapService,
) RoadmapGenerationService {
	serviceLog := log.With("service", "RoadmapGenerationService")
	return &roadmapGenerationService{
		db:             db,
		log:            serviceLog,
		aiClient:       aiClient,
		roadmapService: roadmapService,
	}
}

func validateGenerationInput(input types.RoadmapGenerationInput) error {
	switch input.Goal {
	case types.GoalInterviewPrep, types.GoalSkillLearning:
	default:
		return NewValidationError("Goal must be interview-prep or skill-learning")
	}
	if len(strings.TrimSpace(input.TargetRole)) < 2 {
		return NewValidationError("Target role must be at least 2 characters")
	}
	if len(input.Stack) == 0 {
		return NewValidationError("Stack must contain at least one technology")
	}
	if input.Timeline.Value < 1 {
		return NewValidationError("Timeline value must be at least 1")
	}
	switch input.Timeline.Unit {
	case types.TimelineUnitDays, types.TimelineUnitWeeks, types.TimelineUnitMonths:
	default:
		return NewValidationError("Timeline unit must be days, weeks or months")
	}
	if input.HoursPerDay < 1 || input.HoursPerDay > 24 {
		return NewValidationError("Hours per day must be between 1 and 24")
	}
	switch input.SkillLevel {
	case types.SkillLevelBeginner, types.SkillLevelIntermediate, types.SkillLevelAdvanced:
	default:
		return NewValidationError("Skill level must be beginner, intermediate or advanced")
	}
	return nil
}

// Generate runs the whole pipeline: prompt, completion, parse, persist.
// Nothing is written until the parse succeeds, so a bad model response
// leaves no partial roadmap behind.
func (gs *roadmapGenerationService) Generate(ctx context.Context, input types.RoadmapGenerationInput) (*types.Roadmap, error) {
	if vErr := validateGenerationInput(input); vErr != nil {
		return nil, vErr
	}

	prompt := BuildGenerationPrompt(input)

	rawText, genErr := gs.aiClient.GenerateText(ctx, prompt, generationTemperature)
	if genErr != nil {
		gs.log.Warn("Roadmap generation call failed", "error", genErr)
		return nil, genErr
	}

	doc, parseErr := ParseRoadmapDocument(rawText)
	if parseErr != nil {
		gs.log.Warn("Roadmap parse failed", "error", parseErr)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, parseErr)
	}

	roadmap, createErr := gs.roadmapService.CreateFromDocument(ctx, input, doc)
	if createErr != nil {
		return nil, fmt.Errorf("Failed to persist generated roadmap: %w", createErr)
	}

	gs.log.Info("Generated roadmap",
		"roadmap_id", roadmap.ID,
		"phases", len(doc.Phases),
	)
	return roadmap, nil
}
