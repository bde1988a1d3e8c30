package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/infinito-iitp/ca-portal-api/internal/constants"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrIncorrectPassword = errors.New("current password is incorrect")
	ErrSamePassword      = errors.New("new password must be different from current password")
	ErrPasswordMismatch  = errors.New("password confirmation does not match new password")
	ErrTooManyPORs       = errors.New("too many PORs")
)

// ProfileService maintains the caller's own account.
type ProfileService struct {
	userRepo repository.UserRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile returns the user's own record.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserLookup(err)
	}
	return user, nil
}

// ChangePasswordInput holds a password change request.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the password after verifying the current one. The
// length rule is checked before the current password.
func (s *ProfileService) ChangePassword(ctx context.Context, userID uint64, input ChangePasswordInput) error {
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if input.ConfirmPassword != input.NewPassword {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return mapUserLookup(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrIncorrectPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.NewPassword)); err == nil {
		return ErrSamePassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), constants.BcryptCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", mapUserLookup(err))
	}
	return nil
}

// UpdateProfileInput holds a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	Fullname    *string
	CollegeName *string
	RollNo      *string
	PORs        []string
}

// UpdateProfile merges the provided fields into the stored profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint64, input UpdateProfileInput) (*models.User, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, mapUserLookup(err)
	}

	fields := make(map[string]interface{})
	if input.Fullname != nil {
		fields["fullname"] = strings.TrimSpace(*input.Fullname)
	}
	if input.CollegeName != nil {
		fields["college_name"] = cleanText(*input.CollegeName)
	}
	if input.RollNo != nil {
		fields["roll_no"] = strings.TrimSpace(*input.RollNo)
	}
	if input.PORs != nil {
		if len(input.PORs) > constants.MaxPORs {
			return nil, ErrTooManyPORs
		}
		pors := make([]string, len(input.PORs))
		for i, p := range input.PORs {
			pors[i] = cleanText(p)
		}
		fields["pors"] = datatypes.JSONSlice[string](pors)
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

func mapUserLookup(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("failed to find user: %w", err)
}
