package models

import (
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Reviewed reports whether the status is terminal.
func (s ApplicationStatus) Reviewed() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

type CAApplication struct {
	ID                   uint64            `gorm:"primarykey" json:"id"`
	UserID               uint64            `gorm:"not null;uniqueIndex:idx_ca_applications_user_id" json:"userId"`
	ApplicationStatement string            `gorm:"type:text;not null" json:"applicationStatement"`
	ApplicationDate      time.Time         `gorm:"not null;index" json:"applicationDate"`
	Status               ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedByID         *uint64           `json:"reviewedBy,omitempty"`
	ReviewedAt           *time.Time        `json:"reviewedAt,omitempty"`

	// Relations
	User       User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ReviewedBy *User `gorm:"foreignKey:ReviewedByID" json:"reviewer,omitempty"`
}

func (CAApplication) TableName() string {
	return "ca_applications"
}

func (a *CAApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ApplicationDate.IsZero() {
		a.ApplicationDate = time.Now()
	}
	a.ApplicationDate = a.ApplicationDate.UTC()
	if a.Status == "" {
		a.Status = ApplicationPending
	}
	return nil
}

// BeforeSave stamps the review time once the status leaves pending.
func (a *CAApplication) BeforeSave(tx *gorm.DB) error {
	if a.Status.Reviewed() && a.ReviewedAt == nil {
		now := time.Now()
		a.ReviewedAt = &now
	}
	return nil
}
