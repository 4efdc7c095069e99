package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/types"
)

type TopicRepo interface {
	Create(ctx context.Context, tx *gorm.DB, topics []*types.Topic) ([]*types.Topic, error)
	GetByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Topic, error)
	GetByPhaseIDs(ctx context.Context, tx *gorm.DB, phaseIDs []uuid.UUID) ([]*types.Topic, error)
	UpdateStatusByPublicID(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, topicID string, status string) (int64, error)
	DeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	repoLog := baseLog.With("repo", "TopicRepo")
	return &topicRepo{db: db, log: repoLog}
}

func (tr *topicRepo) Create(ctx context.Context, tx *gorm.DB, topics []*types.Topic) ([]*types.Topic, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(topics) == 0 {
		return []*types.Topic{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&topics).Error; err != nil {
		return nil, err
	}

	return topics, nil
}

func (tr *topicRepo) GetByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Topic, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Topic

	if len(roadmapIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("roadmap_id IN ?", roadmapIDs).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (tr *topicRepo) GetByPhaseIDs(ctx context.Context, tx *gorm.DB, phaseIDs []uuid.UUID) ([]*types.Topic, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Topic

	if len(phaseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("phase_id IN ?", phaseIDs).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

// UpdateStatusByPublicID sets the status of the single topic addressed by its
// model-assigned id within one roadmap. One row, one column; sibling topics
// are untouched, so concurrent updates to different topics never collide.
func (tr *topicRepo) UpdateStatusByPublicID(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, topicID string, status string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Topic{}).
		Where("roadmap_id = ? AND topic_id = ?", roadmapID, topicID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (tr *topicRepo) DeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(roadmapIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("roadmap_id IN ?", roadmapIDs).
		Delete(&types.Topic{}).Error
}
