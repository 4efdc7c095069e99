package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/pathforge-backend/internal/types"
)

// TimelineToDays converts a timeline to a day count (months are 30 days).
func TimelineToDays(value int, unit string) int {
	switch unit {
	case types.TimelineUnitWeeks:
		return value * 7
	case types.TimelineUnitMonths:
		return value * 30
	default:
		return value
	}
}

// TargetPhaseCount derives how many phases to ask the model for: one per
// week of timeline, clamped to [3, 8].
func TargetPhaseCount(timelineInDays int) int {
	phases := int(math.Ceil(float64(timelineInDays) / 7))
	if phases < 3 {
		return 3
	}
	if phases > 8 {
		return 8
	}
	return phases
}

func BuildGenerationPrompt(input types.RoadmapGenerationInput) string {
	goalDescription := "learning and skill development"
	if input.Goal == types.GoalInterviewPrep {
		goalDescription = "preparing for technical interviews"
	}

	timelineInDays := TimelineToDays(input.Timeline.Value, input.Timeline.Unit)
	totalHours := timelineInDays * input.HoursPerDay
	phaseCount := TargetPhaseCount(timelineInDays)

	return fmt.Sprintf(`You are an expert learning path designer. Create a comprehensive, structured learning roadmap for the following:

**Goal:** %s
**Target Role:** %s
**Technologies/Stack:** %s
**Timeline:** %d %s
**Daily Study Time:** %d hours/day
**Total Available Hours:** %d hours
**Current Level:** %s

Generate a detailed roadmap in the following JSON structure:

{
  "title": "A descriptive title for this roadmap",
  "phases": [
    {
      "id": "phase-1",
      "title": "Phase title",
      "description": "Brief description of what this phase covers",
      "order": 1,
      "topics": [
        {
          "id": "topic-1-1",
          "title": "Topic title",
          "description": "Brief description",
          "estimatedMinutes": 120,
          "order": 1,
          "content": "Detailed learning content explaining the topic (2-3 paragraphs with examples)",
          "resources": [
            { "title": "Resource name", "url": "https://example.com", "type": "docs|video|article|tutorial" }
          ],
          "practiceQuestions": [
            {
              "id": "q-1-1-1",
              "question": "Practice question or coding challenge",
              "type": "coding|quiz|open-ended",
              "difficulty": "easy|medium|hard",
              "starterCode": "// Optional starter code",
              "hints": ["Hint 1", "Hint 2"]
            }
          ]
        }
      ]
    }
  ]
}

Requirements:
1. Create %d phases that progress from fundamentals to advanced
2. Each phase should have 3-6 topics
3. Total estimated time across all topics should roughly equal %d hours
4. Include at least 1-2 practice questions per topic
5. For interview prep, focus on commonly asked questions and patterns
6. Provide real, functional resource URLs (official docs, MDN, FreeCodeCamp, YouTube tutorials)
7. Content should be detailed enough to learn from directly
8. Match difficulty to the %s level, progressively increasing

Return ONLY the valid JSON object, no markdown formatting or code blocks.`,
		goalDescription,
		input.TargetRole,
		strings.Join(input.Stack, ", "),
		input.Timeline.Value, input.Timeline.Unit,
		input.HoursPerDay,
		totalHours,
		input.SkillLevel,
		phaseCount,
		totalHours,
		input.SkillLevel,
	)
}

// TutorContext carries the optional surrounding state of a tutor question.
type TutorContext struct {
	RoadmapTitle string `json:"roadmapTitle,omitempty"`
	CurrentPhase string `json:"currentPhase,omitempty"`
	CurrentTopic string `json:"currentTopic,omitempty"`
	Code         string `json:"code,omitempty"`
	Language     string `json:"language,omitempty"`
}

func BuildTutorPrompt(message string, tctx TutorContext) string {
	var contextInfo strings.Builder
	if tctx.RoadmapTitle != "" {
		fmt.Fprintf(&contextInfo, "\nRoadmap: %s", tctx.RoadmapTitle)
	}
	if tctx.CurrentPhase != "" {
		fmt.Fprintf(&contextInfo, "\nCurrent Phase: %s", tctx.CurrentPhase)
	}
	if tctx.CurrentTopic != "" {
		fmt.Fprintf(&contextInfo, "\nCurrent Topic: %s", tctx.CurrentTopic)
	}
	if tctx.Code != "" {
		fmt.Fprintf(&contextInfo, "\n\nThe user is currently working on the following code:\n```%s\n%s\n```\n", tctx.Language, tctx.Code)
	}

	return fmt.Sprintf(`You are an expert AI tutor helping a learner with their studies.%s

The learner asks: "%s"

Provide a helpful, educational response. If they're asking about code, include examples.
If they're confused, break it down step by step. Be encouraging and supportive.
Keep responses focused and practical. Use markdown formatting for clarity.`,
		contextInfo.String(), message)
}
