package models

import "gorm.io/gorm"

type Tag struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"` // stored with the leading '#'

	// Relationships
	Traces []Trace `gorm:"many2many:trace_tags"`
}
