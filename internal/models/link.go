package models

import "gorm.io/gorm"

type Link struct {
	gorm.Model

	NodeID  uint   `gorm:"not null;index"`
	FileURL string `gorm:"not null"`

	// Relationships
	Node Node `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
