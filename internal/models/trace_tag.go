package models

// TraceTag is the join table between traces and tags. A trace's tag set is
// recomputed by deleting all of its rows and reinserting the new set inside
// one transaction.
type TraceTag struct {
	TraceID uint `gorm:"primaryKey"`
	TagID   uint `gorm:"primaryKey"`
}
