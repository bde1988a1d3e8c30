package dto

import (
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
)

// UserDTO is the full profile of a user. Credentials are never included.
type UserDTO struct {
	ID             uint64      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Fullname       string      `json:"fullname"`
	CollegeName    string      `json:"collegeName"`
	RollNo         string      `json:"rollNo"`
	PORs           []string    `json:"PORs"`
	ProfilePicture string      `json:"profilePicture"`
	IsIITPStud     bool        `json:"isIITPStud"`
	Role           models.Role `json:"role"`
	Score          int64       `json:"score"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// UserSummaryDTO identifies a user inside another resource.
type UserSummaryDTO struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	Fullname       string `json:"fullname"`
	CollegeName    string `json:"collegeName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Score          *int64 `json:"score,omitempty"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	User    UserDTO `json:"user"`
}

// MessageResponse is a success envelope with no payload. Msg and Message
// carry the same text.
type MessageResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// NewMessageResponse builds a success envelope for message.
func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Success: true, Msg: message, Message: message}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	pors := []string(user.PORs)
	if pors == nil {
		pors = []string{}
	}
	return UserDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Fullname:       user.Fullname,
		CollegeName:    user.CollegeName,
		RollNo:         user.RollNo,
		PORs:           pors,
		ProfilePicture: user.ProfilePicture,
		IsIITPStud:     user.IsIITPStud,
		Role:           user.Role,
		Score:          user.Score,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:             user.ID,
		Username:       user.Username,
		Fullname:       user.Fullname,
		CollegeName:    user.CollegeName,
		ProfilePicture: user.ProfilePicture,
	}
}

// ToScorerDTO is ToUserSummaryDTO with the score included.
func ToScorerDTO(user models.User) UserSummaryDTO {
	s := ToUserSummaryDTO(user)
	score := user.Score
	s.Score = &score
	return s
}

// ToUserDTOs converts a slice of users.
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func summaryIfLoaded(user *models.User) *UserSummaryDTO {
	if user == nil || user.ID == 0 {
		return nil
	}
	s := ToUserSummaryDTO(*user)
	return &s
}
