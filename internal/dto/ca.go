package dto

import (
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
)

// CAApplicationDTO represents a CA application in API responses
type CAApplicationDTO struct {
	ID                   uint64                   `json:"id"`
	UserID               uint64                   `json:"userId"`
	ApplicationStatement string                   `json:"applicationStatement"`
	ApplicationDate      time.Time                `json:"applicationDate"`
	Status               models.ApplicationStatus `json:"status"`
	ReviewedByID         *uint64                  `json:"reviewedBy,omitempty"`
	ReviewedAt           *time.Time               `json:"reviewedAt,omitempty"`
	Applicant            *UserSummaryDTO          `json:"applicant,omitempty"`
	Reviewer             *UserSummaryDTO          `json:"reviewer,omitempty"`
}

// CAApplicationResponse wraps a single application.
type CAApplicationResponse struct {
	Success     bool             `json:"success"`
	Msg         string           `json:"msg,omitempty"`
	Message     string           `json:"message,omitempty"`
	Application CAApplicationDTO `json:"application"`
}

// CAApplicationListResponse represents a paginated list of applications
type CAApplicationListResponse struct {
	Success      bool                     `json:"success"`
	Applications []CAApplicationDTO       `json:"applications"`
	Pagination   utils.PaginationResponse `json:"pagination"`
}

// ToCAApplicationDTO converts a CAApplication model. Applicant and reviewer
// are included only when preloaded.
func ToCAApplicationDTO(app models.CAApplication) CAApplicationDTO {
	return CAApplicationDTO{
		ID:                   app.ID,
		UserID:               app.UserID,
		ApplicationStatement: app.ApplicationStatement,
		ApplicationDate:      app.ApplicationDate,
		Status:               app.Status,
		ReviewedByID:         app.ReviewedByID,
		ReviewedAt:           app.ReviewedAt,
		Applicant:            summaryIfLoaded(&app.User),
		Reviewer:             summaryIfLoaded(app.ReviewedBy),
	}
}

// ToCAApplicationDTOs converts a slice of applications.
func ToCAApplicationDTOs(apps []models.CAApplication) []CAApplicationDTO {
	out := make([]CAApplicationDTO, len(apps))
	for i, a := range apps {
		out[i] = ToCAApplicationDTO(a)
	}
	return out
}
