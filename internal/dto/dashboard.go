package dto

import (
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/models"
)

// ActivityType identifies the event behind a feed entry.
type ActivityType string

const (
	ActivityUserRegistration ActivityType = "user_registration"
	ActivityTaskAssigned     ActivityType = "task_assigned"
	ActivityUserActivity     ActivityType = "user_activity"
	ActivityTaskActivity     ActivityType = "task_activity"
	ActivityTaskAvailable    ActivityType = "task_available"
	ActivityCAWelcome        ActivityType = "ca_welcome"
	ActivityWelcome          ActivityType = "welcome"
)

// Activity is one entry of a dashboard feed.
type Activity struct {
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}

// PlaceholderNotComputed marks a statistic that is not derived yet.
const PlaceholderNotComputed = "not_computed"

// Placeholder is a statistic without a value. Clients must not read a
// missing value as zero.
type Placeholder struct {
	Value *int64 `json:"value"`
	State string `json:"state"`
}

// NotComputed returns an empty placeholder.
func NotComputed() Placeholder {
	return Placeholder{State: PlaceholderNotComputed}
}

// DashboardPayload is implemented by every role-specific dashboard.
type DashboardPayload interface {
	View() models.Role
	Activities() []Activity
}

// DashboardBase holds the fields shared by all dashboards.
type DashboardBase struct {
	Kind             models.Role `json:"view"`
	User             UserDTO     `json:"user"`
	RecentActivities []Activity  `json:"recentActivities"`
}

func (b DashboardBase) View() models.Role      { return b.Kind }
func (b DashboardBase) Activities() []Activity { return b.RecentActivities }

type AdminStats struct {
	TotalUsers             int64 `json:"totalUsers"`
	TotalStudents          int64 `json:"totalStudents"`
	TotalModerators        int64 `json:"totalModerators"`
	TotalCAs               int64 `json:"totalCAs"`
	IITPStudents           int64 `json:"iitpStudents"`
	TotalTasks             int64 `json:"totalTasks"`
	PendingCAApplications  int64 `json:"pendingCAApplications"`
	AcceptedCAApplications int64 `json:"acceptedCAApplications"`
	RejectedCAApplications int64 `json:"rejectedCAApplications"`
	RecentRegistrations    int64 `json:"recentRegistrations"`
}

type AdminDashboard struct {
	DashboardBase
	Stats       AdminStats       `json:"stats"`
	RecentTasks []TaskDTO        `json:"recentTasks"`
	RecentUsers []UserDTO        `json:"recentUsers"`
	TopScorers  []UserSummaryDTO `json:"topScorers"`
}

type ModeratorStats struct {
	TotalUsers            int64 `json:"totalUsers"`
	TotalStudents         int64 `json:"totalStudents"`
	TotalCAs              int64 `json:"totalCAs"`
	IITPStudents          int64 `json:"iitpStudents"`
	TotalTasks            int64 `json:"totalTasks"`
	PendingCAApplications int64 `json:"pendingCAApplications"`
	ManagedUsers          int64 `json:"managedUsers"`
}

type ModeratorDashboard struct {
	DashboardBase
	Stats                 ModeratorStats     `json:"stats"`
	PendingCAApplications []CAApplicationDTO `json:"pendingCAApplications"`
	RecentUsers           []UserDTO          `json:"recentUsers"`
	RecentTasks           []TaskDTO          `json:"recentTasks"`
}

type CAStats struct {
	CurrentScore       int64       `json:"currentScore"`
	TotalTasksAssigned int64       `json:"totalTasksAssigned"`
	CompletedTasks     Placeholder `json:"completedTasks"`
	UpcomingTasks      int64       `json:"upcomingTasks"`
	ApplicationStatus  string      `json:"applicationStatus"`
	Responsibilities   []string    `json:"responsibilities"`
	CollegeName        string      `json:"collegeName"`
	RollNo             string      `json:"rollNo"`
}

type CADashboard struct {
	DashboardBase
	Stats         CAStats           `json:"stats"`
	AssignedTasks []TaskDTO         `json:"assignedTasks"`
	CAApplication *CAApplicationDTO `json:"caApplication"`
}

type UserStats struct {
	CurrentScore   int64       `json:"currentScore"`
	CompletedTasks Placeholder `json:"completedTasks"`
	AvailableTasks int64       `json:"availableTasks"`
	CollegeName    string      `json:"collegeName"`
	RollNo         string      `json:"rollNo"`
	Rank           Placeholder `json:"rank"`
}

type UserDashboard struct {
	DashboardBase
	Stats          UserStats `json:"stats"`
	AvailableTasks []TaskDTO `json:"availableTasks"`
}

// DashboardResponse is the envelope of GET /api/dashboard.
type DashboardResponse struct {
	Success bool             `json:"success"`
	Data    DashboardPayload `json:"data"`
}
