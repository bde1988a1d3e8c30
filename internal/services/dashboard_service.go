package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"gorm.io/gorm"
)

// DashboardView builds the dashboard of one role.
type DashboardView interface {
	Build(ctx context.Context, user *models.User) (dto.DashboardPayload, error)
}

// DashboardService picks the view for the caller's role and builds it. Any
// failing query fails the whole dashboard.
type DashboardService struct {
	users    repository.UserRepository
	views    map[models.Role]DashboardView
	fallback DashboardView
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewDashboardService wires the four role views. A nil clock means time.Now.
func NewDashboardService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	apps repository.CAApplicationRepository,
	m *metrics.Metrics,
	log *slog.Logger,
	clock func() time.Time,
) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	src := dashboardSource{users: users, tasks: tasks, apps: apps, now: clock}
	userView := &userDashboard{src}
	return &DashboardService{
		users: users,
		views: map[models.Role]DashboardView{
			models.RoleAdmin:     &adminDashboard{src},
			models.RoleModerator: &moderatorDashboard{src},
			models.RoleCA:        &caDashboard{src},
			models.RoleUser:      userView,
		},
		fallback: userView,
		metrics:  m,
		log:      log,
	}
}

func (s *DashboardService) viewFor(role models.Role) (DashboardView, models.Role) {
	if v, ok := s.views[role]; ok {
		return v, role
	}
	return s.fallback, models.RoleUser
}

// GetDashboard builds the dashboard of userID.
func (s *DashboardService) GetDashboard(ctx context.Context, userID uint64) (dto.DashboardPayload, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	view, kind := s.viewFor(user.Role)
	payload, err := view.Build(ctx, user)
	if err != nil {
		s.metrics.DashboardFailed(string(kind))
		s.log.ErrorContext(ctx, "dashboard build failed", "user_id", userID, "view", kind, "error", err)
		return nil, fmt.Errorf("failed to build %s dashboard: %w", kind, err)
	}

	s.metrics.DashboardBuilt(string(kind))
	return payload, nil
}
