package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/pathforge-backend/internal/types"
)

// ParseError marks model output that could not be turned into a valid
// roadmap document. Path is empty for syntax failures and names the first
// offending field for structural ones.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// stripCodeFences removes a leading ```json (or bare ```) fence and the
// matching trailing fence when the model wraps its output in markdown.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

type rawTopic struct {
	ID                *string                  `json:"id"`
	Title             *string                  `json:"title"`
	Description       *string                  `json:"description"`
	Status            *string                  `json:"status"`
	EstimatedMinutes  *float64                 `json:"estimatedMinutes"`
	Content           *string                  `json:"content"`
	Resources         []types.Resource         `json:"resources"`
	PracticeQuestions []types.PracticeQuestion `json:"practiceQuestions"`
}

type rawPhase struct {
	ID          *string    `json:"id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Topics      []rawTopic `json:"topics"`
}

type rawRoadmap struct {
	Title  *string    `json:"title"`
	Phases []rawPhase `json:"phases"`
}

// ParseRoadmapDocument turns raw model text into a normalized document.
// Order values are reassigned 1..N in array order and every topic status is
// forced to pending, regardless of what the model produced. The first
// missing or mistyped required field fails the whole parse.
func ParseRoadmapDocument(rawText string) (*types.RoadmapDocument, error) {
	cleaned := stripCodeFences(rawText)

	var raw rawRoadmap
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ParseError{
				Path:    typeErr.Field,
				Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return nil, &ParseError{Message: "model output was not valid JSON"}
	}

	if raw.Title == nil || strings.TrimSpace(*raw.Title) == "" {
		return nil, &ParseError{Path: "title", Message: "required string is missing"}
	}
	if len(raw.Phases) == 0 {
		return nil, &ParseError{Path: "phases", Message: "must be a non-empty array"}
	}

	doc := &types.RoadmapDocument{
		Title:  strings.TrimSpace(*raw.Title),
		Phases: make([]types.PhaseDoc, 0, len(raw.Phases)),
	}

	for pi, rp := range raw.Phases {
		phasePath := fmt.Sprintf("phases[%d]", pi)
		if rp.Title == nil || strings.TrimSpace(*rp.Title) == "" {
			return nil, &ParseError{Path: phasePath + ".title", Message: "required string is missing"}
		}
		if rp.Description == nil {
			return nil, &ParseError{Path: phasePath + ".description", Message: "required string is missing"}
		}
		if rp.Topics == nil {
			return nil, &ParseError{Path: phasePath + ".topics", Message: "required array is missing"}
		}

		phase := types.PhaseDoc{
			ID:          valueOrDefault(rp.ID, fmt.Sprintf("phase-%d", pi+1)),
			Title:       strings.TrimSpace(*rp.Title),
			Description: *rp.Description,
			Order:       pi + 1,
			Topics:      make([]types.TopicDoc, 0, len(rp.Topics)),
		}

		for ti, rt := range rp.Topics {
			topicPath := fmt.Sprintf("%s.topics[%d]", phasePath, ti)
			if rt.Title == nil || strings.TrimSpace(*rt.Title) == "" {
				return nil, &ParseError{Path: topicPath + ".title", Message: "required string is missing"}
			}
			if rt.Description == nil {
				return nil, &ParseError{Path: topicPath + ".description", Message: "required string is missing"}
			}
			if rt.EstimatedMinutes == nil {
				return nil, &ParseError{Path: topicPath + ".estimatedMinutes", Message: "required number is missing"}
			}
			minutes := int(*rt.EstimatedMinutes)
			if minutes < 0 {
				return nil, &ParseError{Path: topicPath + ".estimatedMinutes", Message: "must be non-negative"}
			}

			topic := types.TopicDoc{
				ID:               valueOrDefault(rt.ID, fmt.Sprintf("topic-%d-%d", pi+1, ti+1)),
				Title:            strings.TrimSpace(*rt.Title),
				Description:      *rt.Description,
				Status:           types.TopicStatusPending,
				EstimatedMinutes: minutes,
				Order:            ti + 1,
			}
			if rt.Content != nil {
				topic.Content = *rt.Content
			}
			topic.Resources = rt.Resources
			if topic.Resources == nil {
				topic.Resources = []types.Resource{}
			}
			topic.PracticeQuestions = rt.PracticeQuestions
			if topic.PracticeQuestions == nil {
				topic.PracticeQuestions = []types.PracticeQuestion{}
			}

			phase.Topics = append(phase.Topics, topic)
		}

		doc.Phases = append(doc.Phases, phase)
	}

	return doc, nil
}

func valueOrDefault(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return strings.TrimSpace(*s)
}
