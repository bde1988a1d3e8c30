package services

import (
	"context"
	"testing"

	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionService_SubmitAndReview(t *testing.T) {
	db := setupTestDB(t)
	tasks := repository.NewTaskRepository(db)
	svc := NewSubmissionService(repository.NewSubmissionRepository(db), tasks, metrics.New(), discardLogger())
	ctx := context.Background()

	ca := createUser(t, db, "zoya", models.RoleCA, "Secret12")
	mod := createUser(t, db, "amit", models.RoleModerator, "Secret12")
	task := &models.Task{Title: "Workshop", Description: "Host a workshop", AssignedByID: mod.ID, MaxPoints: 30}
	require.NoError(t, tasks.Create(ctx, task))

	_, err := svc.Submit(ctx, SubmitInput{TaskID: task.ID, CAID: ca.ID})
	assert.ErrorIs(t, err, ErrProofRequired)

	_, err = svc.Submit(ctx, SubmitInput{TaskID: task.ID, CAID: ca.ID, ProofURLs: []string{"not a url"}})
	assert.ErrorIs(t, err, ErrInvalidProofURL)

	_, err = svc.Submit(ctx, SubmitInput{TaskID: 999, CAID: ca.ID, ProofURLs: []string{"https://example.com/1"}})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	sub, err := svc.Submit(ctx, SubmitInput{
		TaskID:    task.ID,
		CAID:      ca.ID,
		ProofURLs: []string{" https://example.com/photo "},
		Comments:  "done",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/photo"}, []string(sub.ProofURLs))
	assert.Nil(t, sub.PointsAwarded)

	_, err = svc.Review(ctx, ReviewInput{SubmissionID: sub.ID, ReviewerID: mod.ID, Points: 31})
	assert.ErrorIs(t, err, ErrPointsOutOfRange)

	_, err = svc.Review(ctx, ReviewInput{SubmissionID: sub.ID, ReviewerID: mod.ID, Points: -1})
	assert.ErrorIs(t, err, ErrPointsOutOfRange)

	reviewed, err := svc.Review(ctx, ReviewInput{SubmissionID: sub.ID, ReviewerID: mod.ID, Points: 25, Comments: "nice"})
	require.NoError(t, err)
	require.NotNil(t, reviewed.PointsAwarded)
	assert.Equal(t, int64(25), *reviewed.PointsAwarded)
	assert.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, "nice", reviewed.ReviewComments)

	_, err = svc.Review(ctx, ReviewInput{SubmissionID: sub.ID, ReviewerID: mod.ID, Points: 5})
	assert.ErrorIs(t, err, ErrSubmissionAlreadyReviewed)

	var credited models.User
	require.NoError(t, db.First(&credited, ca.ID).Error)
	assert.Equal(t, int64(25), credited.Score)

	mine, err := svc.ListMine(ctx, ca.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Workshop", mine[0].Task.Title)

	_, err = svc.Review(ctx, ReviewInput{SubmissionID: 999, ReviewerID: mod.ID})
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}
