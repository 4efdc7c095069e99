package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pgdb "github.com/yungbote/pathforge-backend/internal/db"
	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/repos"
	"github.com/yungbote/pathforge-backend/internal/requestdata"
	"github.com/yungbote/pathforge-backend/internal/ssedata"
	"github.com/yungbote/pathforge-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	t.Cleanup(func() { log.Sync() })
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, pgdb.AutoMigrate(gdb))
	return gdb
}

type testEnv struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	userTokenRepo  repos.UserTokenRepo
	roadmapRepo    repos.RoadmapRepo
	phaseRepo      repos.PhaseRepo
	topicRepo      repos.TopicRepo
	authService    AuthService
	userService    UserService
	roadmapService RoadmapService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := newTestLogger(t)

	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	roadmapRepo := repos.NewRoadmapRepo(gdb, log)
	phaseRepo := repos.NewPhaseRepo(gdb, log)
	topicRepo := repos.NewTopicRepo(gdb, log)

	return &testEnv{
		db:             gdb,
		log:            log,
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		roadmapRepo:    roadmapRepo,
		phaseRepo:      phaseRepo,
		topicRepo:      topicRepo,
		authService:    NewAuthService(gdb, log, userRepo, userTokenRepo, "test-secret", time.Hour, 24*time.Hour),
		userService:    NewUserService(gdb, log, userRepo, userTokenRepo, roadmapRepo, phaseRepo, topicRepo),
		roadmapService: NewRoadmapService(gdb, log, roadmapRepo, phaseRepo, topicRepo),
	}
}

func (env *testEnv) registerUser(t *testing.T, name, email string) *types.User {
	t.Helper()
	user, err := env.authService.RegisterUser(context.Background(), name, email, "secret1")
	require.NoError(t, err)
	return user
}

func ctxForUser(userID uuid.UUID) context.Context {
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
	return ssedata.WithSSEData(ctx)
}

func sampleInput() types.RoadmapGenerationInput {
	return types.RoadmapGenerationInput{
		Goal:        types.GoalSkillLearning,
		TargetRole:  "Backend Engineer",
		Stack:       []string{"Go", "PostgreSQL"},
		Timeline:    types.Timeline{Value: 2, Unit: types.TimelineUnitWeeks},
		HoursPerDay: 2,
		SkillLevel:  types.SkillLevelIntermediate,
	}
}

func sampleDocument() *types.RoadmapDocument {
	return &types.RoadmapDocument{
		Title: "Go Backend Roadmap",
		Phases: []types.PhaseDoc{
			{
				ID:          "phase-1",
				Title:       "Foundations",
				Description: "Language basics",
				Order:       1,
				Topics: []types.TopicDoc{
					{
						ID:               "topic-1-1",
						Title:            "Syntax",
						Description:      "Variables and types",
						Status:           types.TopicStatusPending,
						EstimatedMinutes: 120,
						Order:            1,
						Resources:        []types.Resource{{Title: "Tour of Go", URL: "https://go.dev/tour", Type: "tutorial"}},
						PracticeQuestions: []types.PracticeQuestion{
							{ID: "q1", Question: "What is a rune?", Type: "quiz", Difficulty: "easy"},
						},
					},
					{
						ID:                "topic-1-2",
						Title:             "Control Flow",
						Description:       "Loops and conditionals",
						Status:            types.TopicStatusPending,
						EstimatedMinutes:  90,
						Order:             2,
						Resources:         []types.Resource{},
						PracticeQuestions: []types.PracticeQuestion{},
					},
				},
			},
			{
				ID:          "phase-2",
				Title:       "Concurrency",
				Description: "Goroutines and channels",
				Order:       2,
				Topics: []types.TopicDoc{
					{
						ID:                "topic-2-1",
						Title:             "Goroutines",
						Description:       "Lightweight threads",
						Status:            types.TopicStatusPending,
						EstimatedMinutes:  60,
						Order:             1,
						Resources:         []types.Resource{},
						PracticeQuestions: []types.PracticeQuestion{},
					},
				},
			},
		},
	}
}
