package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type DashboardServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *DashboardService
	now time.Time
}

func (s *DashboardServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.now = time.Now().Truncate(time.Second)
	s.svc = NewDashboardService(
		repository.NewUserRepository(s.db),
		repository.NewTaskRepository(s.db),
		repository.NewCAApplicationRepository(s.db),
		metrics.New(),
		discardLogger(),
		func() time.Time { return s.now },
	)
}

func (s *DashboardServiceTestSuite) user(name string, role models.Role) *models.User {
	return createUser(s.T(), s.db, name, role, "Secret12")
}

func (s *DashboardServiceTestSuite) task(title string, by uint64, assignedAt time.Time, due *time.Time) *models.Task {
	task := &models.Task{
		Title:        title,
		Description:  "desc",
		AssignedByID: by,
		AssignedAt:   assignedAt,
		DueDate:      due,
		MaxPoints:    10,
	}
	s.Require().NoError(s.db.Create(task).Error)
	return task
}

func (s *DashboardServiceTestSuite) application(userID uint64, status models.ApplicationStatus, at time.Time) {
	app := &models.CAApplication{UserID: userID, ApplicationStatement: "s", ApplicationDate: at, Status: status}
	s.Require().NoError(s.db.Create(app).Error)
}

func (s *DashboardServiceTestSuite) build(userID uint64) dto.DashboardPayload {
	payload, err := s.svc.GetDashboard(context.Background(), userID)
	s.Require().NoError(err)
	return payload
}

func assertFeedOrdered(t *testing.T, feed []dto.Activity, max int) {
	t.Helper()
	assert.LessOrEqual(t, len(feed), max)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp), "feed not sorted at %d", i)
	}
}

func (s *DashboardServiceTestSuite) TestAdminDashboard() {
	admin := s.user("root", models.RoleAdmin)
	mod := s.user("mod", models.RoleModerator)
	s.user("ca", models.RoleCA)
	var students []*models.User
	for i := 0; i < 4; i++ {
		students = append(students, s.user(fmt.Sprintf("stud%d", i), models.RoleUser))
	}
	s.Require().NoError(s.db.Model(students[0]).Updates(map[string]interface{}{"score": 50, "is_iitp_stud": true}).Error)
	s.Require().NoError(s.db.Model(students[1]).Update("score", 80).Error)
	old := s.user("old", models.RoleUser)
	s.Require().NoError(s.db.Model(old).UpdateColumn("created_at", s.now.Add(-8*24*time.Hour)).Error)

	for i := 0; i < 7; i++ {
		s.task(fmt.Sprintf("task%d", i), mod.ID, s.now.Add(-time.Duration(i)*time.Minute), nil)
	}
	s.application(students[0].ID, models.ApplicationPending, s.now)
	s.application(students[1].ID, models.ApplicationAccepted, s.now)
	s.application(students[2].ID, models.ApplicationRejected, s.now)

	payload := s.build(admin.ID)
	out, ok := payload.(*dto.AdminDashboard)
	s.Require().True(ok)
	s.Equal(models.RoleAdmin, out.View())

	st := out.Stats
	s.Equal(int64(8), st.TotalUsers, "admins are part of totalUsers")
	s.Equal(int64(5), st.TotalStudents)
	s.Equal(int64(1), st.TotalModerators)
	s.Equal(int64(1), st.TotalCAs)
	s.Equal(st.TotalUsers, st.TotalStudents+st.TotalModerators+st.TotalCAs+1)
	s.Equal(int64(1), st.IITPStudents)
	s.Equal(int64(7), st.TotalTasks)
	s.Equal(int64(1), st.PendingCAApplications)
	s.Equal(int64(1), st.AcceptedCAApplications)
	s.Equal(int64(1), st.RejectedCAApplications)
	s.Equal(int64(5), st.RecentRegistrations)

	s.Len(out.RecentTasks, 5)
	s.Equal("task0", out.RecentTasks[0].Title)
	s.Len(out.RecentUsers, 5)
	for _, u := range out.RecentUsers {
		s.NotEqual("old", u.Username)
	}
	s.Require().Len(out.TopScorers, 5)
	s.Equal("stud1", out.TopScorers[0].Username)
	s.Equal("stud0", out.TopScorers[1].Username)
	s.Equal(int64(80), *out.TopScorers[0].Score)

	s.Len(out.RecentActivities, 10)
	assertFeedOrdered(s.T(), out.RecentActivities, 10)
	s.Contains(feedMessages(out.RecentActivities), `Task "task0" assigned by Name mod`)
}

func (s *DashboardServiceTestSuite) TestModeratorDashboard() {
	mod := s.user("mod", models.RoleModerator)
	admin := s.user("root", models.RoleAdmin)
	for i := 0; i < 6; i++ {
		u := s.user(fmt.Sprintf("app%d", i), models.RoleUser)
		s.application(u.ID, models.ApplicationPending, s.now.Add(-time.Duration(6-i)*time.Hour))
	}
	s.task("only", admin.ID, s.now, nil)

	out, ok := s.build(mod.ID).(*dto.ModeratorDashboard)
	s.Require().True(ok)

	s.Equal(int64(6), out.Stats.TotalUsers)
	s.Equal(out.Stats.TotalUsers, out.Stats.TotalStudents)
	s.Equal(out.Stats.TotalUsers, out.Stats.ManagedUsers)
	s.Equal(int64(6), out.Stats.PendingCAApplications)
	s.Equal(int64(1), out.Stats.TotalTasks)

	s.Require().Len(out.PendingCAApplications, 5)
	s.Equal("app0", out.PendingCAApplications[0].Applicant.Username)
	s.Equal("app4", out.PendingCAApplications[4].Applicant.Username)
	s.Len(out.RecentUsers, 5)
	s.Len(out.RecentTasks, 1)

	s.Len(out.RecentActivities, 6)
	assertFeedOrdered(s.T(), out.RecentActivities, 10)
	s.Contains(feedMessages(out.RecentActivities), "Name app5 (Score: 0)")
	s.Contains(feedMessages(out.RecentActivities), `Task "only" assigned`)
}

func (s *DashboardServiceTestSuite) TestCADashboardWithoutTasks() {
	ca := s.user("fresh", models.RoleCA)

	out, ok := s.build(ca.ID).(*dto.CADashboard)
	s.Require().True(ok)

	s.Equal("not_applied", out.Stats.ApplicationStatus)
	s.Equal("Not specified", out.Stats.CollegeName)
	s.Equal("Not specified", out.Stats.RollNo)
	s.Equal(dto.PlaceholderNotComputed, out.Stats.CompletedTasks.State)
	s.Nil(out.Stats.CompletedTasks.Value)
	s.Empty(out.Stats.Responsibilities)
	s.Nil(out.CAApplication)
	s.Require().Len(out.RecentActivities, 1)
	s.Equal(dto.ActivityCAWelcome, out.RecentActivities[0].Type)
	s.True(s.now.Equal(out.RecentActivities[0].Timestamp))
}

func (s *DashboardServiceTestSuite) TestCADashboardWithTasks() {
	ca := s.user("busy", models.RoleCA)
	reviewer := s.user("boss", models.RoleAdmin)
	s.Require().NoError(s.db.Model(ca).Updates(map[string]interface{}{"score": 12, "college_name": "NIT"}).Error)
	s.application(ca.ID, models.ApplicationAccepted, s.now.Add(-48*time.Hour))
	s.Require().NoError(s.db.Model(&models.CAApplication{}).Where("user_id = ?", ca.ID).Update("reviewed_by_id", reviewer.ID).Error)

	future := s.now.Add(24 * time.Hour)
	past := s.now.Add(-24 * time.Hour)
	for i := 0; i < 7; i++ {
		due := &past
		if i < 2 {
			due = &future
		}
		s.task(fmt.Sprintf("ca-task%d", i), ca.ID, s.now.Add(-time.Duration(i)*time.Hour), due)
	}
	s.task("not mine", reviewer.ID, s.now, &future)

	out, ok := s.build(ca.ID).(*dto.CADashboard)
	s.Require().True(ok)

	s.Equal(int64(12), out.Stats.CurrentScore)
	s.Equal(int64(7), out.Stats.TotalTasksAssigned)
	s.Equal(int64(2), out.Stats.UpcomingTasks)
	s.Equal("accepted", out.Stats.ApplicationStatus)
	s.Equal("NIT", out.Stats.CollegeName)
	s.Len(out.AssignedTasks, 7)
	s.Require().NotNil(out.CAApplication)
	s.Require().NotNil(out.CAApplication.Reviewer)
	s.Equal("boss", out.CAApplication.Reviewer.Username)

	s.Len(out.RecentActivities, 5)
	assertFeedOrdered(s.T(), out.RecentActivities, 5)
	s.Equal(`Assigned task: "ca-task0"`, out.RecentActivities[0].Message)
}

func (s *DashboardServiceTestSuite) TestUpcomingTasksAcrossTimezones() {
	ist := time.FixedZone("IST", 5*3600+1800)
	pst := time.FixedZone("PST", -8*3600)
	// 05:00 UTC, reported by a clock in IST
	s.now = time.Date(2030, 1, 1, 10, 30, 0, 0, ist)

	east := s.user("east", models.RoleCA)
	dueEast := time.Date(2030, 1, 1, 10, 0, 0, 0, ist)
	s.task("already due", east.ID, s.now.Add(-time.Hour), &dueEast)

	west := s.user("west", models.RoleCA)
	dueWest := time.Date(2030, 1, 1, 0, 0, 0, 0, pst)
	s.task("due later", west.ID, s.now.Add(-time.Hour), &dueWest)

	out, ok := s.build(east.ID).(*dto.CADashboard)
	s.Require().True(ok)
	s.Equal(int64(1), out.Stats.TotalTasksAssigned)
	s.Equal(int64(0), out.Stats.UpcomingTasks, "04:30 UTC is before 05:00 UTC")

	out, ok = s.build(west.ID).(*dto.CADashboard)
	s.Require().True(ok)
	s.Equal(int64(1), out.Stats.TotalTasksAssigned)
	s.Equal(int64(1), out.Stats.UpcomingTasks, "08:00 UTC is after 05:00 UTC")
}

func (s *DashboardServiceTestSuite) TestUserDashboard() {
	user := s.user("viewer", models.RoleUser)

	out, ok := s.build(user.ID).(*dto.UserDashboard)
	s.Require().True(ok)
	s.Require().Len(out.RecentActivities, 1)
	s.Equal(dto.ActivityWelcome, out.RecentActivities[0].Type)
	s.Zero(out.Stats.AvailableTasks)

	mod := s.user("mod", models.RoleModerator)
	for i := 0; i < 6; i++ {
		s.task(fmt.Sprintf("open%d", i), mod.ID, s.now.Add(-time.Duration(i)*time.Minute), nil)
	}

	out, ok = s.build(user.ID).(*dto.UserDashboard)
	s.Require().True(ok)
	s.Equal(int64(6), out.Stats.AvailableTasks)
	s.Len(out.AvailableTasks, 5)
	s.Equal("mod", out.AvailableTasks[0].AssignedBy.Username)
	s.Len(out.RecentActivities, 5)
	assertFeedOrdered(s.T(), out.RecentActivities, 5)
	s.Equal(`New task available: "open0"`, out.RecentActivities[0].Message)
	s.Equal(dto.PlaceholderNotComputed, out.Stats.Rank.State)
}

func (s *DashboardServiceTestSuite) TestUnknownRoleFallsBackToUserView() {
	user := s.user("odd", models.Role("guest"))

	payload := s.build(user.ID)
	_, ok := payload.(*dto.UserDashboard)
	s.True(ok)
	s.Equal(models.RoleUser, payload.View())
}

func (s *DashboardServiceTestSuite) TestMissingUser() {
	_, err := s.svc.GetDashboard(context.Background(), 777)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *DashboardServiceTestSuite) TestQueryFailureAbortsDashboard() {
	admin := s.user("root", models.RoleAdmin)
	s.Require().NoError(s.db.Migrator().DropTable(&models.Task{}))

	_, err := s.svc.GetDashboard(context.Background(), admin.ID)
	s.Error(err)
	s.NotErrorIs(err, ErrUserNotFound)
}

func TestDashboardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceTestSuite))
}

func feedMessages(feed []dto.Activity) []string {
	out := make([]string, len(feed))
	for i, a := range feed {
		out[i] = a.Message
	}
	return out
}

func TestPlaceholderJSON(t *testing.T) {
	payload := &dto.UserDashboard{
		DashboardBase: dto.DashboardBase{Kind: models.RoleUser},
		Stats:         dto.UserStats{CompletedTasks: dto.NotComputed(), Rank: dto.NotComputed()},
	}
	buf, err := json.Marshal(dto.DashboardResponse{Success: true, Data: payload})
	require.NoError(t, err)

	body := string(buf)
	assert.Contains(t, body, `"completedTasks":{"value":null,"state":"not_computed"}`)
	assert.Contains(t, body, `"rank":{"value":null,"state":"not_computed"}`)
	assert.Contains(t, body, `"view":"user"`)
}

func TestSortFeedIsStable(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feed := []dto.Activity{
		{Message: "a", Timestamp: ts},
		{Message: "b", Timestamp: ts.Add(time.Minute)},
		{Message: "c", Timestamp: ts},
		{Message: "d", Timestamp: ts.Add(-time.Minute)},
	}
	got := sortFeed(feed, 3)
	assert.Equal(t, []string{"b", "a", "c"}, feedMessages(got))
}
