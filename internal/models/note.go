package models

import "gorm.io/gorm"

type Note struct {
	gorm.Model

	NodeID  uint   `gorm:"not null;uniqueIndex"` // One note per node
	Content string `gorm:"not null"`

	// Relationships
	Node Node `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
