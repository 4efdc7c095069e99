package types

// Document-shaped structs for the generation pipeline. The model returns one
// JSON document; the parser normalizes it into a RoadmapDocument before the
// store maps it onto roadmap/phase/topic rows.

type Timeline struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

type PracticeQuestion struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	Difficulty  string   `json:"difficulty"`
	StarterCode string   `json:"starterCode,omitempty"`
	Solution    string   `json:"solution,omitempty"`
	Hints       []string `json:"hints,omitempty"`
}

type TopicDoc struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Status            string             `json:"status"`
	EstimatedMinutes  int                `json:"estimatedMinutes"`
	Content           string             `json:"content"`
	Resources         []Resource         `json:"resources"`
	PracticeQuestions []PracticeQuestion `json:"practiceQuestions"`
	Order             int                `json:"order"`
}

type PhaseDoc struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Topics      []TopicDoc `json:"topics"`
	Order       int        `json:"order"`
}

type RoadmapDocument struct {
	Title  string     `json:"title"`
	Phases []PhaseDoc `json:"phases"`
}

const (
	GoalInterviewPrep = "interview-prep"
	GoalSkillLearning = "skill-learning"
)

const (
	TimelineUnitDays   = "days"
	TimelineUnitWeeks  = "weeks"
	TimelineUnitMonths = "months"
)

const (
	SkillLevelBeginner     = "beginner"
	SkillLevelIntermediate = "intermediate"
	SkillLevelAdvanced     = "advanced"
)

type RoadmapGenerationInput struct {
	Goal        string   `json:"goal"`
	TargetRole  string   `json:"targetRole"`
	Stack       []string `json:"stack"`
	Timeline    Timeline `json:"timeline"`
	HoursPerDay int      `json:"hoursPerDay"`
	SkillLevel  string   `json:"skillLevel"`
}
