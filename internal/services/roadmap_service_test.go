package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pathforge-backend/internal/types"
)

func TestCreateAndGetFullRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	roadmap, err := env.roadmapService.CreateFromDocument(ctx, sampleInput(), sampleDocument())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, roadmap.ID)

	view, err := env.roadmapService.GetFull(ctx, roadmap.ID)
	require.NoError(t, err)

	assert.Equal(t, "Go Backend Roadmap", view.Title)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, view.Stack)
	assert.Equal(t, types.Timeline{Value: 2, Unit: types.TimelineUnitWeeks}, view.Timeline)
	require.Len(t, view.Phases, 2)

	first := view.Phases[0]
	assert.Equal(t, "phase-1", first.ID)
	assert.Equal(t, 1, first.Order)
	require.Len(t, first.Topics, 2)
	assert.Equal(t, "topic-1-1", first.Topics[0].ID)
	assert.Equal(t, 120, first.Topics[0].EstimatedMinutes)
	require.Len(t, first.Topics[0].Resources, 1)
	assert.Equal(t, "https://go.dev/tour", first.Topics[0].Resources[0].URL)
	require.Len(t, first.Topics[0].PracticeQuestions, 1)

	assert.Equal(t, 3, view.TotalTopics)
	assert.Equal(t, 0, view.CompletedTopics)
	assert.Equal(t, 0, view.Progress)
	assert.Equal(t, 4.5, view.HoursLearned)
}

func TestListSummariesNewestFirstWithProgress(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	first, err := env.roadmapService.CreateFromDocument(ctx, sampleInput(), sampleDocument())
	require.NoError(t, err)
	secondDoc := sampleDocument()
	secondDoc.Title = "Second Roadmap"
	second, err := env.roadmapService.CreateFromDocument(ctx, sampleInput(), secondDoc)
	require.NoError(t, err)

	require.NoError(t, env.roadmapService.UpdateTopicStatus(ctx, first.ID, "topic-1-1", types.TopicStatusDone))

	summaries, err := env.roadmapService.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	ids := []uuid.UUID{summaries[0].ID, summaries[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)

	for _, s := range summaries {
		assert.Equal(t, 3, s.TotalTopics)
		if s.ID == first.ID {
			assert.Equal(t, 1, s.CompletedTopics)
			assert.Equal(t, 33, s.Progress)
		} else {
			assert.Equal(t, 0, s.CompletedTopics)
			assert.Equal(t, 0, s.Progress)
		}
	}
}

func TestUpdateTopicStatusTargetsOneRow(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	roadmap, err := env.roadmapService.CreateFromDocument(ctx, sampleInput(), sampleDocument())
	require.NoError(t, err)

	require.NoError(t, env.roadmapService.UpdateTopicStatus(ctx, roadmap.ID, "topic-1-2", types.TopicStatusDone))

	view, err := env.roadmapService.GetFull(ctx, roadmap.ID)
	require.NoError(t, err)

	topics := view.Phases[0].Topics
	assert.Equal(t, types.TopicStatusPending, topics[0].Status, "sibling topic untouched")
	assert.Equal(t, types.TopicStatusDone, topics[1].Status)
	assert.Equal(t, "Control Flow", topics[1].Title, "other fields untouched")
	assert.Equal(t, 90, topics[1].EstimatedMinutes)
}

func TestUpdateTopicStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	roadmap, err := env.roadmapService.CreateFromDocument(ctx, sampleInput(), sampleDocument())
	require.NoError(t, err)

	err = env.roadmapService.UpdateTopicStatus(ctx, roadmap.ID, "topic-1-1", "finished")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	err = env.roadmapService.UpdateTopicStatus(ctx, roadmap.ID, "no-such-topic", types.TopicStatusDone)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerUser(t, "Jo", "jo@x.com")
	other := env.registerUser(t, "Sam", "sam@x.com")

	roadmap, err := env.roadmapService.CreateFromDocument(ctxForUser(owner.ID), sampleInput(), sampleDocument())
	require.NoError(t, err)

	otherCtx := ctxForUser(other.ID)

	_, err = env.roadmapService.GetFull(otherCtx, roadmap.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = env.roadmapService.Delete(otherCtx, roadmap.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = env.roadmapService.UpdateTopicStatus(otherCtx, roadmap.ID, "topic-1-1", types.TopicStatusDone)
	require.ErrorIs(t, err, ErrNotFound)

	// The owner still sees it untouched.
	view, err := env.roadmapService.GetFull(ctxForUser(owner.ID), roadmap.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TopicStatusPending, view.Phases[0].Topics[0].Status)
}

func TestDeleteRemovesTree(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	roadmap, err := env.roadmapService.CreateFromDocument(ctx, sampleInput(), sampleDocument())
	require.NoError(t, err)

	require.NoError(t, env.roadmapService.Delete(ctx, roadmap.ID))

	_, err = env.roadmapService.GetFull(ctx, roadmap.ID)
	require.ErrorIs(t, err, ErrNotFound)

	var topicCount int64
	require.NoError(t, env.db.Model(&types.Topic{}).Where("roadmap_id = ?", roadmap.ID).Count(&topicCount).Error)
	assert.Zero(t, topicCount)
	var phaseCount int64
	require.NoError(t, env.db.Model(&types.Phase{}).Where("roadmap_id = ?", roadmap.ID).Count(&phaseCount).Error)
	assert.Zero(t, phaseCount)
}

func TestDeleteAccountCascades(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	_, err := env.roadmapService.CreateFromDocument(ctx, sampleInput(), sampleDocument())
	require.NoError(t, err)

	require.NoError(t, env.userService.DeleteAccount(ctx))

	var userCount int64
	require.NoError(t, env.db.Model(&types.User{}).Where("id = ?", user.ID).Count(&userCount).Error)
	assert.Zero(t, userCount)
	var roadmapCount int64
	require.NoError(t, env.db.Model(&types.Roadmap{}).Where("user_id = ?", user.ID).Count(&roadmapCount).Error)
	assert.Zero(t, roadmapCount)
	var topicCount int64
	require.NoError(t, env.db.Model(&types.Topic{}).Count(&topicCount).Error)
	assert.Zero(t, topicCount)
}
