package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/constants"
	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"gorm.io/gorm"
)

type dashboardSource struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	apps  repository.CAApplicationRepository
	now   func() time.Time
}

type countQuery struct {
	dst *int64
	run func(context.Context) (int64, error)
}

func runCounts(ctx context.Context, queries []countQuery) error {
	for _, q := range queries {
		n, err := q.run(ctx)
		if err != nil {
			return err
		}
		*q.dst = n
	}
	return nil
}

func (s dashboardSource) countUsers(filter repository.UserFilter) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		return s.users.Count(ctx, filter)
	}
}

func (s dashboardSource) countTasks(filter repository.TaskFilter) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		return s.tasks.Count(ctx, filter)
	}
}

func (s dashboardSource) countApplications(status models.ApplicationStatus) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		return s.apps.CountByStatus(ctx, status)
	}
}

func (s dashboardSource) recentTasks(ctx context.Context, filter repository.TaskFilter, limit int) ([]models.Task, error) {
	return s.tasks.List(ctx, filter, utils.PaginationParams{Page: 1, Limit: limit})
}

func rolePtr(r models.Role) *models.Role { return &r }

func base(kind models.Role, user *models.User) dto.DashboardBase {
	return dto.DashboardBase{Kind: kind, User: dto.ToUserDTO(*user)}
}

// sortFeed orders activities newest first, keeping query order on ties, and
// keeps at most limit entries.
func sortFeed(activities []dto.Activity, limit int) []dto.Activity {
	slices.SortStableFunc(activities, func(a, b dto.Activity) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}

func orNotSpecified(s string) string {
	if s == "" {
		return constants.NotSpecified
	}
	return s
}

type adminDashboard struct{ dashboardSource }

func (v *adminDashboard) Build(ctx context.Context, user *models.User) (dto.DashboardPayload, error) {
	out := &dto.AdminDashboard{DashboardBase: base(models.RoleAdmin, user)}
	st := &out.Stats

	err := runCounts(ctx, []countQuery{
		{&st.TotalUsers, v.countUsers(repository.UserFilter{})},
		{&st.TotalStudents, v.countUsers(repository.UserFilter{Role: rolePtr(models.RoleUser)})},
		{&st.TotalModerators, v.countUsers(repository.UserFilter{Role: rolePtr(models.RoleModerator)})},
		{&st.TotalCAs, v.countUsers(repository.UserFilter{Role: rolePtr(models.RoleCA)})},
		{&st.IITPStudents, v.countUsers(repository.UserFilter{IITPOnly: true})},
		{&st.TotalTasks, v.countTasks(repository.TaskFilter{})},
		{&st.PendingCAApplications, v.countApplications(models.ApplicationPending)},
		{&st.AcceptedCAApplications, v.countApplications(models.ApplicationAccepted)},
		{&st.RejectedCAApplications, v.countApplications(models.ApplicationRejected)},
	})
	if err != nil {
		return nil, fmt.Errorf("count statistics: %w", err)
	}

	tasks, err := v.recentTasks(ctx, repository.TaskFilter{}, constants.DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent tasks: %w", err)
	}

	since := v.now().UTC().Add(-constants.RecentRegistrationWindow)
	recent, err := v.users.List(ctx, repository.UserFilter{CreatedSince: &since}, repository.UserOrderNewest, constants.DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}

	top, err := v.users.List(ctx, repository.UserFilter{Role: rolePtr(models.RoleUser)}, repository.UserOrderScore, constants.DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("top scorers: %w", err)
	}

	st.RecentRegistrations = int64(len(recent))
	out.RecentTasks = dto.ToTaskDTOs(tasks)
	out.RecentUsers = dto.ToUserDTOs(recent)
	out.TopScorers = make([]dto.UserSummaryDTO, len(top))
	for i, u := range top {
		out.TopScorers[i] = dto.ToScorerDTO(u)
	}

	feed := make([]dto.Activity, 0, len(recent)+len(tasks))
	for _, u := range recent {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityUserRegistration,
			Message:   fmt.Sprintf("%s registered", u.Fullname),
			Timestamp: u.CreatedAt,
		})
	}
	for _, t := range tasks {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityTaskAssigned,
			Message:   fmt.Sprintf("Task \"%s\" assigned by %s", t.Title, t.AssignedBy.Fullname),
			Timestamp: t.AssignedAt,
		})
	}
	out.RecentActivities = sortFeed(feed, constants.DashboardFeedLimit)

	return out, nil
}

type moderatorDashboard struct{ dashboardSource }

func (v *moderatorDashboard) Build(ctx context.Context, user *models.User) (dto.DashboardPayload, error) {
	out := &dto.ModeratorDashboard{DashboardBase: base(models.RoleModerator, user)}
	st := &out.Stats

	students := repository.UserFilter{Role: rolePtr(models.RoleUser)}
	err := runCounts(ctx, []countQuery{
		{&st.TotalUsers, v.countUsers(students)},
		{&st.TotalCAs, v.countUsers(repository.UserFilter{Role: rolePtr(models.RoleCA)})},
		{&st.IITPStudents, v.countUsers(repository.UserFilter{IITPOnly: true})},
		{&st.TotalTasks, v.countTasks(repository.TaskFilter{})},
		{&st.PendingCAApplications, v.countApplications(models.ApplicationPending)},
	})
	if err != nil {
		return nil, fmt.Errorf("count statistics: %w", err)
	}
	st.TotalStudents = st.TotalUsers
	st.ManagedUsers = st.TotalUsers

	pending := models.ApplicationPending
	apps, _, err := v.apps.List(ctx,
		repository.ApplicationFilter{Status: &pending, OldestFirst: true},
		utils.PaginationParams{Page: 1, Limit: constants.DashboardRecentLimit},
	)
	if err != nil {
		return nil, fmt.Errorf("pending applications: %w", err)
	}

	users, err := v.users.List(ctx, students, repository.UserOrderNewest, constants.DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}

	tasks, err := v.recentTasks(ctx, repository.TaskFilter{}, constants.DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent tasks: %w", err)
	}

	out.PendingCAApplications = dto.ToCAApplicationDTOs(apps)
	out.RecentUsers = dto.ToUserDTOs(users)
	out.RecentTasks = dto.ToTaskDTOs(tasks)

	feed := make([]dto.Activity, 0, len(users)+len(tasks))
	for _, u := range users {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityUserActivity,
			Message:   fmt.Sprintf("%s (Score: %d)", u.Fullname, u.Score),
			Timestamp: u.UpdatedAt,
		})
	}
	for _, t := range tasks {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityTaskActivity,
			Message:   fmt.Sprintf("Task \"%s\" assigned", t.Title),
			Timestamp: t.AssignedAt,
		})
	}
	out.RecentActivities = sortFeed(feed, constants.DashboardFeedLimit)

	return out, nil
}

type caDashboard struct{ dashboardSource }

func (v *caDashboard) Build(ctx context.Context, user *models.User) (dto.DashboardPayload, error) {
	out := &dto.CADashboard{DashboardBase: base(models.RoleCA, user)}
	now := v.now().UTC()
	mine := repository.TaskFilter{AssignedByID: &user.ID}
	upcoming := repository.TaskFilter{AssignedByID: &user.ID, DueAfter: &now}

	st := &out.Stats
	err := runCounts(ctx, []countQuery{
		{&st.TotalTasksAssigned, v.countTasks(mine)},
		{&st.UpcomingTasks, v.countTasks(upcoming)},
	})
	if err != nil {
		return nil, fmt.Errorf("count statistics: %w", err)
	}

	tasks, err := v.recentTasks(ctx, mine, constants.DashboardAssignedLimit)
	if err != nil {
		return nil, fmt.Errorf("assigned tasks: %w", err)
	}

	st.ApplicationStatus = constants.ApplicationNotApplied
	app, err := v.apps.FindByUserID(ctx, user.ID, "ReviewedBy")
	switch {
	case err == nil:
		st.ApplicationStatus = string(app.Status)
		appDTO := dto.ToCAApplicationDTO(*app)
		out.CAApplication = &appDTO
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("ca application: %w", err)
	}

	st.CurrentScore = user.Score
	st.CompletedTasks = dto.NotComputed()
	st.Responsibilities = []string(user.PORs)
	if st.Responsibilities == nil {
		st.Responsibilities = []string{}
	}
	st.CollegeName = orNotSpecified(user.CollegeName)
	st.RollNo = orNotSpecified(user.RollNo)
	out.AssignedTasks = dto.ToTaskDTOs(tasks)

	feed := make([]dto.Activity, 0, len(tasks))
	for _, t := range tasks {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityTaskAssigned,
			Message:   fmt.Sprintf("Assigned task: \"%s\"", t.Title),
			Timestamp: t.AssignedAt,
		})
	}
	if len(feed) == 0 {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityCAWelcome,
			Message:   "Welcome to CA Dashboard - Start assigning tasks to engage with your college community!",
			Timestamp: now,
		})
	}
	out.RecentActivities = sortFeed(feed, constants.DashboardPersonalFeedSize)

	return out, nil
}

type userDashboard struct{ dashboardSource }

func (v *userDashboard) Build(ctx context.Context, user *models.User) (dto.DashboardPayload, error) {
	out := &dto.UserDashboard{DashboardBase: base(models.RoleUser, user)}

	available, err := v.tasks.Count(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	tasks, err := v.recentTasks(ctx, repository.TaskFilter{}, constants.DashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent tasks: %w", err)
	}

	out.Stats = dto.UserStats{
		CurrentScore:   user.Score,
		CompletedTasks: dto.NotComputed(),
		AvailableTasks: available,
		CollegeName:    orNotSpecified(user.CollegeName),
		RollNo:         orNotSpecified(user.RollNo),
		Rank:           dto.NotComputed(),
	}
	out.AvailableTasks = dto.ToTaskDTOs(tasks)

	feed := make([]dto.Activity, 0, len(tasks))
	for _, t := range tasks {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityTaskAvailable,
			Message:   fmt.Sprintf("New task available: \"%s\"", t.Title),
			Timestamp: t.AssignedAt,
		})
	}
	if len(feed) == 0 {
		feed = append(feed, dto.Activity{
			Type:      dto.ActivityWelcome,
			Message:   "Welcome to your dashboard! Start participating in tasks to earn points.",
			Timestamp: v.now(),
		})
	}
	out.RecentActivities = sortFeed(feed, constants.DashboardPersonalFeedSize)

	return out, nil
}
