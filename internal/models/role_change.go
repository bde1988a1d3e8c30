package models

import "time"

// RoleChange is an append-only record of a role transition. User.Role is the
// current projection of this log.
type RoleChange struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	UserID      uint64    `gorm:"not null;index" json:"userId"`
	FromRole    Role      `gorm:"type:varchar(20);not null" json:"fromRole"`
	ToRole      Role      `gorm:"type:varchar(20);not null" json:"toRole"`
	ChangedByID uint64    `gorm:"not null" json:"changedBy"`
	Reason      string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt   time.Time `json:"createdAt"`
}
