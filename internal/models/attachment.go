package models

import "gorm.io/gorm"

type Attachment struct {
	gorm.Model

	NodeID     uint   `gorm:"not null;index"`
	FileURL    string `gorm:"not null"`
	FileName   string `gorm:"not null"`
	FileType   string
	FileSize   int64
	StorageKey string `gorm:"not null"` // Object storage path the blob lives under

	// Relationships
	Node Node `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
