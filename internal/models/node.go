package models

import "gorm.io/gorm"

type NodeStatus string

const (
	StatusRed    NodeStatus = "red"    // not started
	StatusYellow NodeStatus = "yellow" // in progress
	StatusGreen  NodeStatus = "green"  // completed
)

// ParseNodeStatus validates a status value at the request boundary.
func ParseNodeStatus(s string) (NodeStatus, bool) {
	switch NodeStatus(s) {
	case StatusRed, StatusYellow, StatusGreen:
		return NodeStatus(s), true
	default:
		return "", false
	}
}

// Next advances the status cyclically: red -> yellow -> green -> red.
func (s NodeStatus) Next() NodeStatus {
	switch s {
	case StatusRed:
		return StatusYellow
	case StatusYellow:
		return StatusGreen
	default:
		return StatusRed
	}
}

type Node struct {
	gorm.Model

	TraceID     uint   `gorm:"not null;index"` // Parent trace, never reassigned
	Heading     string `gorm:"not null"`
	Description string
	Status      NodeStatus `gorm:"type:varchar(16);not null;default:red"`
	Position    int        `gorm:"not null"` // Ordering key, monotonic per trace, gaps are kept after deletes

	// Relationships
	Trace       Trace        `gorm:"foreignKey:TraceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Deadline    *Deadline    `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Note        *Note        `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Links       []Link       `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Attachments []Attachment `gorm:"foreignKey:NodeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
