package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Roadmap struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_roadmap_user_created" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Goal        string         `gorm:"column:goal;not null" json:"goal"`
	TargetRole  string         `gorm:"column:target_role;not null" json:"targetRole"`
	Stack       datatypes.JSON `gorm:"column:stack;type:jsonb" json:"stack"`
	Timeline    datatypes.JSON `gorm:"column:timeline;type:jsonb" json:"timeline"`
	HoursPerDay int            `gorm:"column:hours_per_day;not null" json:"hoursPerDay"`
	SkillLevel  string         `gorm:"column:skill_level;not null" json:"skillLevel"`
	CreatedAt   time.Time      `gorm:"not null;index:idx_roadmap_user_created,sort:desc" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Roadmap) TableName() string { return "roadmap" }
