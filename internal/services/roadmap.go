package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/repos"
	"github.com/yungbote/pathforge-backend/internal/requestdata"
	"github.com/yungbote/pathforge-backend/internal/sse"
	"github.com/yungbote/pathforge-backend/internal/ssedata"
	"github.com/yungbote/pathforge-backend/internal/types"
)

// RoadmapSummary is the list projection. Progress fields are computed from
// the current topic rows on every read, never stored.
type RoadmapSummary struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Goal            string         `json:"goal"`
	TargetRole      string         `json:"targetRole"`
	Timeline        types.Timeline `json:"timeline"`
	CreatedAt       time.Time      `json:"createdAt"`
	Progress        int            `json:"progress"`
	TotalTopics     int            `json:"totalTopics"`
	CompletedTopics int            `json:"completedTopics"`
}

// RoadmapView is the full tree returned by GetFull.
type RoadmapView struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Goal            string           `json:"goal"`
	TargetRole      string           `json:"targetRole"`
	Stack           []string         `json:"stack"`
	Timeline        types.Timeline   `json:"timeline"`
	HoursPerDay     int              `json:"hoursPerDay"`
	SkillLevel      string           `json:"skillLevel"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Phases          []types.PhaseDoc `json:"phases"`
	Progress        int              `json:"progress"`
	TotalTopics     int              `json:"totalTopics"`
	CompletedTopics int              `json:"completedTopics"`
	HoursLearned    float64          `json:"hoursLearned"`
}

type RoadmapService interface {
	CreateFromDocument(ctx context.Context, input types.RoadmapGenerationInput, doc *types.RoadmapDocument) (*types.Roadmap, error)
	ListSummaries(ctx context.Context) ([]RoadmapSummary, error)
	GetFull(ctx context.Context, roadmapID uuid.UUID) (*RoadmapView, error)
	Delete(ctx context.Context, roadmapID uuid.UUID) error
	UpdateTopicStatus(ctx context.Context, roadmapID uuid.UUID, topicID string, status string) error
}

type roadmapService struct {
	db          *gorm.DB
	log         *logger.Logger
	roadmapRepo repos.RoadmapRepo
	phaseRepo   repos.PhaseRepo
	topicRepo   repos.TopicRepo
}

func NewRoadmapService(
	db *gorm.DB,
	log *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	phaseRepo repos.PhaseRepo,
	topicRepo repos.TopicRepo,
) RoadmapService {
	serviceLog := log.With("service", "RoadmapService")
	return &roadmapService{
		db:          db,
		log:         serviceLog,
		roadmapRepo: roadmapRepo,
		phaseRepo:   phaseRepo,
		topicRepo:   topicRepo,
	}
}

func (rs *roadmapService) currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("request data not set in context: %w", ErrUnauthorized)
	}
	return rd.UserID, nil
}

// ownedRoadmap returns the roadmap only when it belongs to the caller. A
// missing row and someone else's row produce the same ErrNotFound.
func (rs *roadmapService) ownedRoadmap(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) (*types.Roadmap, error) {
	found, err := rs.roadmapRepo.GetByIDs(ctx, tx, []uuid.UUID{roadmapID})
	if err != nil {
		return nil, fmt.Errorf("error fetching roadmap: %w", err)
	}
	if len(found) == 0 || found[0] == nil || found[0].UserID != userID {
		return nil, ErrNotFound
	}
	return found[0], nil
}

func (rs *roadmapService) CreateFromDocument(ctx context.Context, input types.RoadmapGenerationInput, doc *types.RoadmapDocument) (*types.Roadmap, error) {
	userID, err := rs.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	stackJSON, sErr := json.Marshal(input.Stack)
	if sErr != nil {
		return nil, fmt.Errorf("Failed to marshal stack: %w", sErr)
	}
	timelineJSON, tErr := json.Marshal(input.Timeline)
	if tErr != nil {
		return nil, fmt.Errorf("Failed to marshal timeline: %w", tErr)
	}

	roadmap := &types.Roadmap{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       doc.Title,
		Goal:        input.Goal,
		TargetRole:  input.TargetRole,
		Stack:       datatypes.JSON(stackJSON),
		Timeline:    datatypes.JSON(timelineJSON),
		HoursPerDay: input.HoursPerDay,
		SkillLevel:  input.SkillLevel,
	}

	if err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := rs.roadmapRepo.Create(ctx, tx, []*types.Roadmap{roadmap}); cErr != nil {
			return fmt.Errorf("Failed to create roadmap: %w", cErr)
		}

		phases := make([]*types.Phase, 0, len(doc.Phases))
		var topics []*types.Topic
		for _, pd := range doc.Phases {
			phase := &types.Phase{
				ID:          uuid.New(),
				RoadmapID:   roadmap.ID,
				PhaseID:     pd.ID,
				Title:       pd.Title,
				Description: pd.Description,
				OrderIndex:  pd.Order,
			}
			phases = append(phases, phase)

			for _, td := range pd.Topics {
				resJSON, rErr := json.Marshal(td.Resources)
				if rErr != nil {
					return fmt.Errorf("Failed to marshal resources: %w", rErr)
				}
				pqJSON, pqErr := json.Marshal(td.PracticeQuestions)
				if pqErr != nil {
					return fmt.Errorf("Failed to marshal practice questions: %w", pqErr)
				}
				topics = append(topics, &types.Topic{
					ID:                uuid.New(),
					PhaseID:           phase.ID,
					RoadmapID:         roadmap.ID,
					TopicID:           td.ID,
					Title:             td.Title,
					Description:       td.Description,
					Status:            td.Status,
					EstimatedMinutes:  td.EstimatedMinutes,
					Content:           td.Content,
					Resources:         datatypes.JSON(resJSON),
					PracticeQuestions: datatypes.JSON(pqJSON),
					OrderIndex:        td.Order,
				})
			}
		}

		if _, pErr := rs.phaseRepo.Create(ctx, tx, phases); pErr != nil {
			return fmt.Errorf("Failed to create phases: %w", pErr)
		}
		if _, tErr := rs.topicRepo.Create(ctx, tx, topics); tErr != nil {
			return fmt.Errorf("Failed to create topics: %w", tErr)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ssedata.AppendMessage(ctx, sse.SSEMessage{
		Channel: "user:" + userID.String(),
		Event:   sse.SSEEventRoadmapCreated,
		Data:    map[string]any{"id": roadmap.ID, "title": roadmap.Title},
	})
	return roadmap, nil
}

func (rs *roadmapService) ListSummaries(ctx context.Context) ([]RoadmapSummary, error) {
	userID, err := rs.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	roadmaps, rErr := rs.roadmapRepo.GetByUserID(ctx, nil, userID)
	if rErr != nil {
		return nil, fmt.Errorf("error fetching roadmaps: %w", rErr)
	}

	summaries := make([]RoadmapSummary, 0, len(roadmaps))
	if len(roadmaps) == 0 {
		return summaries, nil
	}

	roadmapIDs := make([]uuid.UUID, 0, len(roadmaps))
	for _, rm := range roadmaps {
		roadmapIDs = append(roadmapIDs, rm.ID)
	}
	topics, tErr := rs.topicRepo.GetByRoadmapIDs(ctx, nil, roadmapIDs)
	if tErr != nil {
		return nil, fmt.Errorf("error fetching topics: %w", tErr)
	}

	type counts struct{ total, completed int }
	byRoadmap := make(map[uuid.UUID]*counts, len(roadmaps))
	for _, t := range topics {
		c := byRoadmap[t.RoadmapID]
		if c == nil {
			c = &counts{}
			byRoadmap[t.RoadmapID] = c
		}
		c.total++
		if t.Status == types.TopicStatusDone {
			c.completed++
		}
	}

	for _, rm := range roadmaps {
		var timeline types.Timeline
		if len(rm.Timeline) > 0 {
			if uErr := json.Unmarshal(rm.Timeline, &timeline); uErr != nil {
				rs.log.Warn("Malformed timeline column", "roadmap_id", rm.ID, "error", uErr)
			}
		}
		c := byRoadmap[rm.ID]
		if c == nil {
			c = &counts{}
		}
		summaries = append(summaries, RoadmapSummary{
			ID:              rm.ID,
			Title:           rm.Title,
			Goal:            rm.Goal,
			TargetRole:      rm.TargetRole,
			Timeline:        timeline,
			CreatedAt:       rm.CreatedAt,
			Progress:        ProgressPercentage(c.completed, c.total),
			TotalTopics:     c.total,
			CompletedTopics: c.completed,
		})
	}
	return summaries, nil
}

func (rs *roadmapService) GetFull(ctx context.Context, roadmapID uuid.UUID) (*RoadmapView, error) {
	userID, err := rs.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	roadmap, oErr := rs.ownedRoadmap(ctx, nil, userID, roadmapID)
	if oErr != nil {
		return nil, oErr
	}

	phases, pErr := rs.phaseRepo.GetByRoadmapIDs(ctx, nil, []uuid.UUID{roadmapID})
	if pErr != nil {
		return nil, fmt.Errorf("error fetching phases: %w", pErr)
	}
	topics, tErr := rs.topicRepo.GetByRoadmapIDs(ctx, nil, []uuid.UUID{roadmapID})
	if tErr != nil {
		return nil, fmt.Errorf("error fetching topics: %w", tErr)
	}

	topicsByPhase := make(map[uuid.UUID][]types.TopicDoc, len(phases))
	for _, t := range topics {
		doc, dErr := topicRowToDoc(t)
		if dErr != nil {
			rs.log.Warn("Malformed topic row", "topic_id", t.TopicID, "error", dErr)
			continue
		}
		topicsByPhase[t.PhaseID] = append(topicsByPhase[t.PhaseID], doc)
	}

	phaseDocs := make([]types.PhaseDoc, 0, len(phases))
	for _, p := range phases {
		phaseTopics := topicsByPhase[p.ID]
		if phaseTopics == nil {
			phaseTopics = []types.TopicDoc{}
		}
		phaseDocs = append(phaseDocs, types.PhaseDoc{
			ID:          p.PhaseID,
			Title:       p.Title,
			Description: p.Description,
			Order:       p.OrderIndex,
			Topics:      phaseTopics,
		})
	}

	var stack []string
	if len(roadmap.Stack) > 0 {
		if uErr := json.Unmarshal(roadmap.Stack, &stack); uErr != nil {
			rs.log.Warn("Malformed stack column", "roadmap_id", roadmap.ID, "error", uErr)
		}
	}
	var timeline types.Timeline
	if len(roadmap.Timeline) > 0 {
		if uErr := json.Unmarshal(roadmap.Timeline, &timeline); uErr != nil {
			rs.log.Warn("Malformed timeline column", "roadmap_id", roadmap.ID, "error", uErr)
		}
	}

	total, completed, totalMinutes := TopicCounts(phaseDocs)
	return &RoadmapView{
		ID:              roadmap.ID,
		Title:           roadmap.Title,
		Goal:            roadmap.Goal,
		TargetRole:      roadmap.TargetRole,
		Stack:           stack,
		Timeline:        timeline,
		HoursPerDay:     roadmap.HoursPerDay,
		SkillLevel:      roadmap.SkillLevel,
		CreatedAt:       roadmap.CreatedAt,
		UpdatedAt:       roadmap.UpdatedAt,
		Phases:          phaseDocs,
		Progress:        ProgressPercentage(completed, total),
		TotalTopics:     total,
		CompletedTopics: completed,
		HoursLearned:    HoursLearned(totalMinutes),
	}, nil
}

func (rs *roadmapService) Delete(ctx context.Context, roadmapID uuid.UUID) error {
	userID, err := rs.currentUserID(ctx)
	if err != nil {
		return err
	}

	if err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, oErr := rs.ownedRoadmap(ctx, tx, userID, roadmapID); oErr != nil {
			return oErr
		}
		if tErr := rs.topicRepo.DeleteByRoadmapIDs(ctx, tx, []uuid.UUID{roadmapID}); tErr != nil {
			return fmt.Errorf("Failed to delete topics: %w", tErr)
		}
		if pErr := rs.phaseRepo.DeleteByRoadmapIDs(ctx, tx, []uuid.UUID{roadmapID}); pErr != nil {
			return fmt.Errorf("Failed to delete phases: %w", pErr)
		}
		if _, dErr := rs.roadmapRepo.DeleteByIDs(ctx, tx, []uuid.UUID{roadmapID}); dErr != nil {
			return fmt.Errorf("Failed to delete roadmap: %w", dErr)
		}
		return nil
	}); err != nil {
		return err
	}

	ssedata.AppendMessage(ctx, sse.SSEMessage{
		Channel: "user:" + userID.String(),
		Event:   sse.SSEEventRoadmapDeleted,
		Data:    map[string]any{"id": roadmapID},
	})
	return nil
}

// UpdateTopicStatus flips one topic's status and nothing else. The write is
// a single-row UPDATE keyed by (roadmap_id, topic_id), so concurrent
// updates to sibling topics never contend.
func (rs *roadmapService) UpdateTopicStatus(ctx context.Context, roadmapID uuid.UUID, topicID string, status string) error {
	userID, err := rs.currentUserID(ctx)
	if err != nil {
		return err
	}
	if !types.ValidTopicStatus(status) {
		return NewValidationError("Status must be one of pending, in-progress, done")
	}

	if _, oErr := rs.ownedRoadmap(ctx, nil, userID, roadmapID); oErr != nil {
		return oErr
	}

	affected, uErr := rs.topicRepo.UpdateStatusByPublicID(ctx, nil, roadmapID, topicID, status)
	if uErr != nil {
		return fmt.Errorf("Failed to update topic status: %w", uErr)
	}
	if affected == 0 {
		return ErrNotFound
	}

	ssedata.AppendMessage(ctx, sse.SSEMessage{
		Channel: "user:" + userID.String(),
		Event:   sse.SSEEventTopicStatusUpdated,
		Data:    map[string]any{"roadmapId": roadmapID, "topicId": topicID, "status": status},
	})
	return nil
}

func topicRowToDoc(t *types.Topic) (types.TopicDoc, error) {
	doc := types.TopicDoc{
		ID:               t.TopicID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           t.Status,
		EstimatedMinutes: t.EstimatedMinutes,
		Content:          t.Content,
		Order:            t.OrderIndex,
	}
	doc.Resources = []types.Resource{}
	if len(t.Resources) > 0 {
		if err := json.Unmarshal(t.Resources, &doc.Resources); err != nil {
			return doc, fmt.Errorf("resources: %w", err)
		}
	}
	doc.PracticeQuestions = []types.PracticeQuestion{}
	if len(t.PracticeQuestions) > 0 {
		if err := json.Unmarshal(t.PracticeQuestions, &doc.PracticeQuestions); err != nil {
			return doc, fmt.Errorf("practice questions: %w", err)
		}
	}
	return doc, nil
}
