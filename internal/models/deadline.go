package models

import (
	"time"

	"gorm.io/gorm"
)

type Deadline struct {
	gorm.Model

	NodeID   uint      `gorm:"not null;uniqueIndex"` // One deadline per node
	Deadline time.Time `gorm:"not null"`
	Notified bool      `gorm:"not null;default:false"`

	// Relationships
	Node Node `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
