package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Fullname:     "User " + username,
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserRepository_CountAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice", models.RoleUser)
	b := createUser(t, db, "bob", models.RoleUser)
	createUser(t, db, "carol", models.RoleAdmin)
	require.NoError(t, db.Model(a).Updates(map[string]interface{}{"score": 10, "is_iitp_stud": true}).Error)
	require.NoError(t, db.Model(b).Update("score", 30).Error)

	role := models.RoleUser
	count, err := repo.Count(ctx, UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.Count(ctx, UserFilter{IITPOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	all, err := repo.Count(ctx, UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)

	top, err := repo.List(ctx, UserFilter{Role: &role}, UserOrderScore, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].Username)
	assert.Equal(t, "alice", top[1].Username)

	future := time.Now().Add(time.Hour)
	recent, err := repo.List(ctx, UserFilter{CreatedSince: &future}, UserOrderNewest, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestUserRepository_UpdateProfileAndPassword(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "dave", models.RoleUser)

	require.NoError(t, repo.UpdateProfile(ctx, user.ID, map[string]interface{}{"college_name": "IIT Patna"}))
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, nil))
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "newhash"))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "IIT Patna", got.CollegeName)
	assert.Equal(t, "User dave", got.Fullname)
	assert.Equal(t, "newhash", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, 9999, "x"), gorm.ErrRecordNotFound)
}

func TestCAApplicationRepository_DuplicateApplication(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCAApplicationRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "erin", models.RoleUser)

	require.NoError(t, repo.Create(ctx, &models.CAApplication{UserID: user.ID, ApplicationStatement: "first"}))
	err := repo.Create(ctx, &models.CAApplication{UserID: user.ID, ApplicationStatement: "second"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCAApplicationRepository_ReviewPromotes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCAApplicationRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	applicant := createUser(t, db, "frank", models.RoleUser)
	admin := createUser(t, db, "grace", models.RoleAdmin)
	app := &models.CAApplication{UserID: applicant.ID, ApplicationStatement: "pick me"}
	require.NoError(t, repo.Create(ctx, app))

	ca := models.RoleCA
	decision := ReviewDecision{
		ApplicationID: app.ID,
		ApplicantID:   applicant.ID,
		ReviewerID:    admin.ID,
		Status:        models.ApplicationAccepted,
		PromoteTo:     &ca,
		ReviewedAt:    time.Now(),
	}
	require.NoError(t, repo.Review(ctx, decision))

	got, err := repo.FindByID(ctx, app.ID, "ReviewedBy")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, got.Status)
	require.NotNil(t, got.ReviewedAt)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, admin.ID, got.ReviewedBy.ID)

	promoted, err := users.FindByID(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCA, promoted.Role)

	history, err := users.RoleHistory(ctx, applicant.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].FromRole)
	assert.Equal(t, models.RoleCA, history[0].ToRole)
	assert.Equal(t, admin.ID, history[0].ChangedByID)

	// A second decision loses the compare-and-set.
	decision.Status = models.ApplicationRejected
	decision.PromoteTo = nil
	assert.ErrorIs(t, repo.Review(ctx, decision), ErrStaleState)
}

func TestCAApplicationRepository_ListOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCAApplicationRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"u1", "u2", "u3"} {
		u := createUser(t, db, name, models.RoleUser)
		app := &models.CAApplication{
			UserID:               u.ID,
			ApplicationStatement: "statement",
			ApplicationDate:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, app))
	}

	pending := models.ApplicationPending
	apps, total, err := repo.List(ctx, ApplicationFilter{Status: &pending, OldestFirst: true}, utils.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, apps, 2)
	assert.Equal(t, "u1", apps[0].User.Username)
	assert.Equal(t, "u2", apps[1].User.Username)

	count, err := repo.CountByStatus(ctx, models.ApplicationPending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCAApplicationRepository_ReviewRollsBackOnRoleFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `ca_applications`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow(7, "user"))
	mock.ExpectExec("UPDATE `users`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	ca := models.RoleCA
	err = NewCAApplicationRepository(db).Review(context.Background(), ReviewDecision{
		ApplicationID: 1,
		ApplicantID:   7,
		ReviewerID:    2,
		Status:        models.ApplicationAccepted,
		PromoteTo:     &ca,
		ReviewedAt:    time.Now(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	ca := createUser(t, db, "henry", models.RoleCA)
	other := createUser(t, db, "ivy", models.RoleAdmin)
	now := time.Now()
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)

	tasks := []*models.Task{
		{Title: "old", Description: "d", AssignedByID: ca.ID, AssignedAt: now.Add(-2 * time.Hour), DueDate: &past, MaxPoints: 10},
		{Title: "new", Description: "d", AssignedByID: ca.ID, AssignedAt: now.Add(-time.Hour), DueDate: &future, MaxPoints: 10},
		{Title: "other", Description: "d", AssignedByID: other.ID, AssignedAt: now, MaxPoints: 5},
	}
	for _, task := range tasks {
		require.NoError(t, repo.Create(ctx, task))
	}

	list, err := repo.List(ctx, TaskFilter{}, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "other", list[0].Title)
	assert.Equal(t, "ivy", list[0].AssignedBy.Username)

	count, err := repo.Count(ctx, TaskFilter{AssignedByID: &ca.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	upcoming, err := repo.Count(ctx, TaskFilter{AssignedByID: &ca.ID, DueAfter: &now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upcoming)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubmissionRepository_ReviewCreditsScoreOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	ca := createUser(t, db, "jack", models.RoleCA)
	mod := createUser(t, db, "kate", models.RoleModerator)
	task := &models.Task{Title: "t", Description: "d", AssignedByID: mod.ID, MaxPoints: 50}
	require.NoError(t, db.Create(task).Error)

	sub := &models.TaskSubmission{TaskID: task.ID, CAID: ca.ID, ProofURLs: []string{"https://example.com/p"}}
	require.NoError(t, repo.Create(ctx, sub))

	review := SubmissionReview{
		SubmissionID: sub.ID,
		CAID:         ca.ID,
		ReviewerID:   mod.ID,
		Points:       40,
		Comments:     "good",
		ReviewedAt:   time.Now(),
	}
	require.NoError(t, repo.Review(ctx, review))
	assert.ErrorIs(t, repo.Review(ctx, review), ErrStaleState)

	var credited models.User
	require.NoError(t, db.First(&credited, ca.ID).Error)
	assert.Equal(t, int64(40), credited.Score)

	subs, err := repo.ListByCA(ctx, ca.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].PointsAwarded)
	assert.Equal(t, int64(40), *subs[0].PointsAwarded)
	assert.Equal(t, "t", subs[0].Task.Title)
	assert.Equal(t, []string{"https://example.com/p"}, []string(subs[0].ProofURLs))
}
