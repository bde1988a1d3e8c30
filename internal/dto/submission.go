package dto

import (
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
)

// SubmissionDTO represents a task submission in API responses
type SubmissionDTO struct {
	ID             uint64     `json:"id"`
	TaskID         uint64     `json:"taskId"`
	Task           *TaskDTO   `json:"task,omitempty"`
	CAID           uint64     `json:"caId"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	ProofURLs      []string   `json:"proofURLs"`
	CommentsCA     string     `json:"commentsCA,omitempty"`
	ReviewedByID   *uint64    `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	ReviewComments string     `json:"reviewComments,omitempty"`
	PointsAwarded  *int64     `json:"pointsAwarded"`
}

// SubmissionResponse wraps a single submission.
type SubmissionResponse struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message,omitempty"`
	Submission SubmissionDTO `json:"submission"`
}

// SubmissionListResponse wraps a list of submissions.
type SubmissionListResponse struct {
	Success     bool            `json:"success"`
	Submissions []SubmissionDTO `json:"submissions"`
}

// ToSubmissionDTO converts a TaskSubmission model to SubmissionDTO
func ToSubmissionDTO(sub models.TaskSubmission) SubmissionDTO {
	out := SubmissionDTO{
		ID:             sub.ID,
		TaskID:         sub.TaskID,
		CAID:           sub.CAID,
		SubmittedAt:    sub.SubmittedAt,
		ProofURLs:      []string(sub.ProofURLs),
		CommentsCA:     sub.CommentsCA,
		ReviewedByID:   sub.ReviewedByID,
		ReviewedAt:     sub.ReviewedAt,
		ReviewComments: sub.ReviewComments,
		PointsAwarded:  sub.PointsAwarded,
	}
	if sub.Task.ID != 0 {
		task := ToTaskDTO(sub.Task)
		out.Task = &task
	}
	return out
}

// ToSubmissionDTOs converts a slice of submissions.
func ToSubmissionDTOs(subs []models.TaskSubmission) []SubmissionDTO {
	out := make([]SubmissionDTO, len(subs))
	for i, s := range subs {
		out[i] = ToSubmissionDTO(s)
	}
	return out
}
