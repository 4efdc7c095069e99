package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TopicStatusPending    = "pending"
	TopicStatusInProgress = "in-progress"
	TopicStatusDone       = "done"
)

func ValidTopicStatus(s string) bool {
	switch s {
	case TopicStatusPending, TopicStatusInProgress, TopicStatusDone:
		return true
	}
	return false
}

type Topic struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"-"`
	PhaseID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Phase             *Phase         `gorm:"constraint:OnDelete:CASCADE;foreignKey:PhaseID;references:ID" json:"-"`
	RoadmapID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_topic_roadmap_public,unique" json:"-"`
	TopicID           string         `gorm:"column:topic_id;not null;index:idx_topic_roadmap_public,unique" json:"id"`
	Title             string         `gorm:"column:title;not null" json:"title"`
	Description       string         `gorm:"column:description" json:"description"`
	Status            string         `gorm:"column:status;not null;default:'pending'" json:"status"`
	EstimatedMinutes  int            `gorm:"column:estimated_minutes;not null;default:0" json:"estimatedMinutes"`
	Content           string         `gorm:"column:content" json:"content"`
	Resources         datatypes.JSON `gorm:"column:resources;type:jsonb" json:"resources"`
	PracticeQuestions datatypes.JSON `gorm:"column:practice_questions;type:jsonb" json:"practiceQuestions"`
	OrderIndex        int            `gorm:"column:order_index;not null" json:"order"`
	CreatedAt         time.Time      `gorm:"not null" json:"-"`
	UpdatedAt         time.Time      `gorm:"not null" json:"-"`
}

func (Topic) TableName() string { return "roadmap_topic" }
