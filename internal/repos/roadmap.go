package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/types"
)

type RoadmapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, roadmaps []*types.Roadmap) ([]*types.Roadmap, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Roadmap, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Roadmap, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) (int64, error)
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	repoLog := baseLog.With("repo", "RoadmapRepo")
	return &roadmapRepo{db: db, log: repoLog}
}

func (rr *roadmapRepo) Create(ctx context.Context, tx *gorm.DB, roadmaps []*types.Roadmap) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(roadmaps) == 0 {
		return []*types.Roadmap{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&roadmaps).Error; err != nil {
		return nil, err
	}

	return roadmaps, nil
}

func (rr *roadmapRepo) GetByIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Roadmap

	if len(roadmapIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", roadmapIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (rr *roadmapRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Roadmap

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (rr *roadmapRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(roadmapIDs) == 0 {
		return 0, nil
	}

	res := transaction.WithContext(ctx).
		Where("id IN ?", roadmapIDs).
		Delete(&types.Roadmap{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
