package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskSubmission struct {
	ID             uint64                      `gorm:"primarykey" json:"id"`
	TaskID         uint64                      `gorm:"not null;index" json:"taskId"`
	CAID           uint64                      `gorm:"column:ca_id;not null;index" json:"caId"`
	SubmittedAt    time.Time                   `gorm:"not null" json:"submittedAt"`
	ProofURLs      datatypes.JSONSlice[string] `gorm:"column:proof_urls;not null" json:"proofURLs"`
	CommentsCA     string                      `gorm:"column:comments_ca;type:text" json:"commentsCA,omitempty"`
	ReviewedByID   *uint64                     `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time                  `json:"reviewedAt,omitempty"`
	ReviewComments string                      `gorm:"type:text" json:"reviewComments,omitempty"`
	PointsAwarded  *int64                      `json:"pointsAwarded"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	CA   User `gorm:"foreignKey:CAID" json:"-"`
}

func (s *TaskSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	s.SubmittedAt = s.SubmittedAt.UTC()
	return nil
}

// BeforeSave stamps the review time once points are awarded.
func (s *TaskSubmission) BeforeSave(tx *gorm.DB) error {
	if s.PointsAwarded != nil && s.ReviewedAt == nil {
		now := time.Now()
		s.ReviewedAt = &now
	}
	return nil
}
