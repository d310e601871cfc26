package models

import "gorm.io/gorm"

type TraceVisibility string

const (
	VisibilityPublic  TraceVisibility = "public"
	VisibilityPrivate TraceVisibility = "private"
)

// ParseTraceVisibility validates a visibility value at the request boundary.
func ParseTraceVisibility(s string) (TraceVisibility, bool) {
	switch TraceVisibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return TraceVisibility(s), true
	default:
		return "", false
	}
}

type Trace struct {
	gorm.Model

	UserID     uint            `gorm:"not null;index"` // Owner, never reassigned
	Title      string          `gorm:"not null"`
	Visibility TraceVisibility `gorm:"type:varchar(16);not null;default:private"`

	// Relationships
	User  User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Nodes []Node `gorm:"foreignKey:TraceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tags  []Tag  `gorm:"many2many:trace_tags"`
}
