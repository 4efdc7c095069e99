package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/repos"
	"github.com/yungbote/pathforge-backend/internal/requestdata"
	"github.com/yungbote/pathforge-backend/internal/sse"
	"github.com/yungbote/pathforge-backend/internal/ssedata"
	"github.com/yungbote/pathforge-backend/internal/types"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, name string) (*types.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context) error
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	roadmapRepo   repos.RoadmapRepo
	phaseRepo     repos.PhaseRepo
	topicRepo     repos.TopicRepo
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	roadmapRepo repos.RoadmapRepo,
	phaseRepo repos.PhaseRepo,
	topicRepo repos.TopicRepo,
) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		roadmapRepo:   roadmapRepo,
		phaseRepo:     phaseRepo,
		topicRepo:     topicRepo,
	}
}

func (us *userService) currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("request data not set in context: %w", ErrUnauthorized)
	}
	return rd.UserID, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := us.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	found, fErr := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if fErr != nil {
		return nil, fmt.Errorf("error fetching user: %w", fErr)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, ErrNotFound
	}
	return found[0], nil
}

func (us *userService) UpdateName(ctx context.Context, name string) (*types.User, error) {
	userID, err := us.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, NewValidationError("Name must be at least 2 characters")
	}

	var updated *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uErr := us.userRepo.UpdateFields(ctx, tx, userID, map[string]any{"name": name}); uErr != nil {
			return fmt.Errorf("Failed to update user name: %w", uErr)
		}
		found, fErr := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
		if fErr != nil {
			return fmt.Errorf("Failed to reload user: %w", fErr)
		}
		if len(found) == 0 || found[0] == nil {
			return ErrNotFound
		}
		updated = found[0]
		return nil
	}); err != nil {
		return nil, err
	}

	ssedata.AppendMessage(ctx, sse.SSEMessage{
		Channel: "user:" + userID.String(),
		Event:   sse.SSEEventUserNameChanged,
		Data:    map[string]any{"name": updated.Name},
	})
	return updated, nil
}

func (us *userService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	userID, err := us.currentUserID(ctx)
	if err != nil {
		return err
	}
	if len(newPassword) < 6 {
		return NewValidationError("Password must be at least 6 characters")
	}

	found, fErr := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if fErr != nil {
		return fmt.Errorf("error fetching user: %w", fErr)
	}
	if len(found) == 0 || found[0] == nil {
		return ErrNotFound
	}
	user := found[0]

	if cErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); cErr != nil {
		return NewValidationError("Current password is incorrect")
	}

	hashed, hErr := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if hErr != nil {
		return fmt.Errorf("Failed to hash password: %w", hErr)
	}

	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uErr := us.userRepo.UpdateFields(ctx, tx, userID, map[string]any{"password": string(hashed)}); uErr != nil {
			return fmt.Errorf("Failed to update password: %w", uErr)
		}
		return nil
	})
}

// DeleteAccount removes the user and every row hanging off them. Roadmaps
// go first so the delete also works on stores without FK cascades.
func (us *userService) DeleteAccount(ctx context.Context) error {
	userID, err := us.currentUserID(ctx)
	if err != nil {
		return err
	}

	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roadmaps, rErr := us.roadmapRepo.GetByUserID(ctx, tx, userID)
		if rErr != nil {
			return fmt.Errorf("Failed to load roadmaps for delete: %w", rErr)
		}
		roadmapIDs := make([]uuid.UUID, 0, len(roadmaps))
		for _, rm := range roadmaps {
			if rm != nil {
				roadmapIDs = append(roadmapIDs, rm.ID)
			}
		}

		if tErr := us.topicRepo.DeleteByRoadmapIDs(ctx, tx, roadmapIDs); tErr != nil {
			return fmt.Errorf("Failed to delete topics: %w", tErr)
		}
		if pErr := us.phaseRepo.DeleteByRoadmapIDs(ctx, tx, roadmapIDs); pErr != nil {
			return fmt.Errorf("Failed to delete phases: %w", pErr)
		}
		if _, dErr := us.roadmapRepo.DeleteByIDs(ctx, tx, roadmapIDs); dErr != nil {
			return fmt.Errorf("Failed to delete roadmaps: %w", dErr)
		}
		if tkErr := us.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); tkErr != nil {
			return fmt.Errorf("Failed to delete user tokens: %w", tkErr)
		}
		if uErr := us.userRepo.DeleteByIDs(ctx, tx, []uuid.UUID{userID}); uErr != nil {
			return fmt.Errorf("Failed to delete user: %w", uErr)
		}
		return nil
	})
}
