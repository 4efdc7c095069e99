package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/types"
)

type PhaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, phases []*types.Phase) ([]*types.Phase, error)
	GetByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Phase, error)
	DeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error
}

type phaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhaseRepo(db *gorm.DB, baseLog *logger.Logger) PhaseRepo {
	repoLog := baseLog.With("repo", "PhaseRepo")
	return &phaseRepo{db: db, log: repoLog}
}

func (pr *phaseRepo) Create(ctx context.Context, tx *gorm.DB, phases []*types.Phase) ([]*types.Phase, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(phases) == 0 {
		return []*types.Phase{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&phases).Error; err != nil {
		return nil, err
	}

	return phases, nil
}

func (pr *phaseRepo) GetByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Phase, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Phase

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

func (pr *phaseRepo) DeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(roadmapIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("roadmap_id IN ?", roadmapIDs).
		Delete(&types.Phase{}).Error
}
