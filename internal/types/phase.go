package types

import (
	"time"

	"github.com/google/uuid"
)

type Phase struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	RoadmapID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Roadmap     *Roadmap  `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoadmapID;references:ID" json:"-"`
	PhaseID     string    `gorm:"column:phase_id;not null" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	OrderIndex  int       `gorm:"column:order_index;not null" json:"order"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`
	UpdatedAt   time.Time `gorm:"not null" json:"-"`
}

func (Phase) TableName() string { return "roadmap_phase" }
