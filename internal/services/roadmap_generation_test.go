package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pathforge-backend/internal/types"
)

type fakeAIClient struct {
	response string
	err      error
	prompts  []string
	deltas   []string
}

func (f *fakeAIClient) GenerateText(ctx context.Context, prompt string, temperature float64) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAIClient) StreamText(ctx context.Context, prompt string, temperature float64, onDelta func(string)) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	for _, d := range f.deltas {
		onDelta(d)
	}
	var full string
	for _, d := range f.deltas {
		full += d
	}
	return full, nil
}

func TestGeneratePersistsRoadmap(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	fake := &fakeAIClient{response: "```json\n" + wellFormedRoadmapJSON + "\n```"}
	gen := NewRoadmapGenerationService(env.db, env.log, fake, env.roadmapService)

	roadmap, err := gen.Generate(ctx, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "Go Backend Roadmap", roadmap.Title)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Backend Engineer")

	view, err := env.roadmapService.GetFull(ctx, roadmap.ID)
	require.NoError(t, err)
	require.Len(t, view.Phases, 1)
	for _, topic := range view.Phases[0].Topics {
		assert.Equal(t, types.TopicStatusPending, topic.Status)
	}
}

func TestGenerateInputValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	fake := &fakeAIClient{response: wellFormedRoadmapJSON}
	gen := NewRoadmapGenerationService(env.db, env.log, fake, env.roadmapService)

	cases := []struct {
		name   string
		mutate func(*types.RoadmapGenerationInput)
	}{
		{"bad goal", func(in *types.RoadmapGenerationInput) { in.Goal = "world-domination" }},
		{"one-char role", func(in *types.RoadmapGenerationInput) { in.TargetRole = "x" }},
		{"blank role", func(in *types.RoadmapGenerationInput) { in.TargetRole = "  " }},
		{"empty stack", func(in *types.RoadmapGenerationInput) { in.Stack = nil }},
		{"zero timeline", func(in *types.RoadmapGenerationInput) { in.Timeline.Value = 0 }},
		{"bad unit", func(in *types.RoadmapGenerationInput) { in.Timeline.Unit = "decades" }},
		{"hours too high", func(in *types.RoadmapGenerationInput) { in.HoursPerDay = 25 }},
		{"bad skill level", func(in *types.RoadmapGenerationInput) { in.SkillLevel = "wizard" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := sampleInput()
			tc.mutate(&input)
			_, err := gen.Generate(ctx, input)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}

	assert.Empty(t, fake.prompts, "no model call on invalid input")
}

func TestGenerateParseFailureLeavesNothingPersisted(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "Jo", "jo@x.com")
	ctx := ctxForUser(user.ID)

	fake := &fakeAIClient{response: "I am sorry, I cannot produce JSON today."}
	gen := NewRoadmapGenerationService(env.db, env.log, fake, env.roadmapService)

	_, err := gen.Generate(ctx, sampleInput())
	require.ErrorIs(t, err, ErrGenerationFailed)

	summaries, lErr := env.roadmapService.ListSummaries(ctx)
	require.NoError(t, lErr)
	assert.Empty(t, summaries)
}

func TestTutorStreamForwardsDeltas(t *testing.T) {
	log := newTestLogger(t)
	fake := &fakeAIClient{deltas: []string{"Hello", ", ", "world"}}
	tutor := NewTutorService(log, fake)

	var got string
	err := tutor.StreamAnswer(context.Background(), "Explain slices", nil, func(delta string) {
		got += delta
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", got)
}

func TestTutorRequiresMessage(t *testing.T) {
	log := newTestLogger(t)
	fake := &fakeAIClient{}
	tutor := NewTutorService(log, fake)

	err := tutor.StreamAnswer(context.Background(), "   ", nil, func(string) {})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, fake.prompts)
}
