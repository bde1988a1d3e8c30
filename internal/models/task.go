package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	AssignedByID uint64     `gorm:"not null;index" json:"assignedById"`
	AssignedAt   time.Time  `gorm:"not null;index" json:"assignedAt"`
	DueDate      *time.Time `gorm:"index" json:"dueDate"`
	MaxPoints    int64      `gorm:"not null" json:"maxPoints"`
	CreatedAt    time.Time  `json:"createdAt"`

	// Relations
	AssignedBy  User             `gorm:"foreignKey:AssignedByID" json:"assignedBy,omitempty"`
	Submissions []TaskSubmission `gorm:"foreignKey:TaskID" json:"-"`
}

// BeforeSave keeps task times in UTC. SQLite compares stored times as text,
// so mixed offsets would break due date filters.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.AssignedAt.IsZero() {
		t.AssignedAt = time.Now()
	}
	t.AssignedAt = t.AssignedAt.UTC()
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
	return nil
}
