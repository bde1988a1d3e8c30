package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleCA        Role = "ca"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCA, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID             uint64                      `gorm:"primarykey" json:"id"`
	Username       string                      `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email          string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string                      `gorm:"type:varchar(255);not null" json:"-"`
	Fullname       string                      `gorm:"type:varchar(50)" json:"fullname"`
	CollegeName    string                      `gorm:"type:varchar(100)" json:"collegeName"`
	RollNo         string                      `gorm:"type:varchar(20)" json:"rollNo"`
	PORs           datatypes.JSONSlice[string] `gorm:"column:pors" json:"PORs"`
	ProfilePicture string                      `gorm:"type:varchar(512)" json:"profilePicture"`
	IsIITPStud     bool                        `gorm:"column:is_iitp_stud;not null;default:false;index" json:"isIITPStud"`
	Role           Role                        `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	Score          int64                       `gorm:"not null;default:0;index" json:"score"`
	CreatedAt      time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	AssignedTasks []Task           `gorm:"foreignKey:AssignedByID" json:"-"`
	Submissions   []TaskSubmission `gorm:"foreignKey:CAID" json:"-"`
	RoleChanges   []RoleChange     `gorm:"foreignKey:UserID" json:"-"`
}
