package service

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ModerationEvent
}

func (n *recordingNotifier) ModerationApplied(_ context.Context, event ModerationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

type recordingInvalidator struct {
	mu          sync.Mutex
	resourceIDs []string
}

func (i *recordingInvalidator) InvalidateAggregates(_ context.Context, resourceIDs ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.resourceIDs = append(i.resourceIDs, resourceIDs...)
}

func intPtr(v int) *int { return &v }

func seedModerationFixture(t *testing.T) *fakeStore {
	t.Helper()
	store := newFakeStore()
	store.addResource("res-a", "air-quality.csv", "ds-a", "air-quality", "org-1", "env-agency")
	store.addResource("res-b", "budget.xlsx", "ds-b", "budget", "org-2", "treasury")

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.comments["c1"] = &models.ResourceComment{
		ID: "c1", ResourceID: "res-a", Category: models.CategoryThank,
		Content: "thanks", Rating: intPtr(4), Created: created,
	}
	store.comments["c2"] = &models.ResourceComment{
		ID: "c2", ResourceID: "res-a", Category: models.CategoryQuestion,
		Content: "already visible", Created: created, Approval: true,
	}
	store.utilizations["u1"] = &models.Utilization{
		ID: "u1", ResourceID: "res-a", Title: "dashboard", Created: created, Approval: true,
	}
	store.utilComments["uc1"] = &models.UtilizationComment{
		ID: "uc1", UtilizationID: "u1", Category: models.CategoryRequest,
		Content: "needs docs", Created: created,
	}
	return store
}

func TestBulkApproveSkipsAlreadyApproved(t *testing.T) {
	store := seedModerationFixture(t)
	notifier := &recordingNotifier{}
	svc := NewModerationService(store, nil, notifier, testLogger())
	admin := auth.Caller{UserID: "admin", AdminOrgs: []string{"org-1"}}

	result, err := svc.BulkApprove(context.Background(), admin, ModerationTargets{
		ResourceComments:    []string{"c1", "c2"},
		UtilizationComments: []string{"uc1"},
	})
	require.NoError(t, err)

	// c2 was approved before the call, so only c1 counts.
	assert.Equal(t, int64(1), result.ResourceComments)
	assert.Equal(t, int64(1), result.UtilizationComments)
	assert.True(t, store.comments["c1"].Approval)
	require.NotNil(t, store.comments["c1"].ApprovalUserID)
	assert.Equal(t, "admin", *store.comments["c1"].ApprovalUserID)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "approve", notifier.events[0].Action)
	assert.Contains(t, notifier.events[0].ResourceIDs, "res-a")
}

func TestBulkApproveRefreshesSummaries(t *testing.T) {
	store := seedModerationFixture(t)
	svc := NewModerationService(store, nil, nil, testLogger())
	admin := auth.Caller{UserID: "admin", Sysadmin: true}

	_, err := svc.BulkApprove(context.Background(), admin, ModerationTargets{
		ResourceComments:    []string{"c1"},
		UtilizationComments: []string{"uc1"},
	})
	require.NoError(t, err)

	summary := store.commentSummaries["res-a"]
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.CommentCount)
	assert.Equal(t, 1, summary.RatingCommentCount)
	assert.InDelta(t, 4.0, summary.Rating, 0.001)

	// The approved utilization comment feeds the denormalized counter.
	assert.Equal(t, 1, store.utilizations["u1"].CommentCount)
}

func TestBulkApproveDropsCachedAggregates(t *testing.T) {
	store := seedModerationFixture(t)
	invalidator := &recordingInvalidator{}
	svc := NewModerationService(store, invalidator, nil, testLogger())
	admin := auth.Caller{UserID: "admin", AdminOrgs: []string{"org-1"}}

	_, err := svc.BulkApprove(context.Background(), admin, ModerationTargets{
		ResourceComments: []string{"c1"},
	})
	require.NoError(t, err)

	// A public aggregates reader must see the new counts as soon as the
	// transaction commits, not when the cache TTL runs out.
	assert.Equal(t, []string{"res-a"}, invalidator.resourceIDs)
}

func TestBulkDeleteDropsCachedAggregates(t *testing.T) {
	store := seedModerationFixture(t)
	invalidator := &recordingInvalidator{}
	svc := NewModerationService(store, invalidator, nil, testLogger())
	admin := auth.Caller{UserID: "admin", AdminOrgs: []string{"org-1"}}

	_, err := svc.BulkDelete(context.Background(), admin, ModerationTargets{
		ResourceComments: []string{"c1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"res-a"}, invalidator.resourceIDs)
}

func TestBulkApproveRejectedBatchKeepsCache(t *testing.T) {
	store := seedModerationFixture(t)
	invalidator := &recordingInvalidator{}
	svc := NewModerationService(store, invalidator, nil, testLogger())
	outsider := auth.Caller{UserID: "other", AdminOrgs: []string{"org-2"}}

	_, err := svc.BulkApprove(context.Background(), outsider, ModerationTargets{
		ResourceComments: []string{"c1"},
	})
	require.Error(t, err)
	assert.Empty(t, invalidator.resourceIDs)
}

func TestBulkApproveRejectsWholeBatchOnForeignOrg(t *testing.T) {
	store := seedModerationFixture(t)
	store.comments["c3"] = &models.ResourceComment{
		ID: "c3", ResourceID: "res-b", Category: models.CategoryThank,
		Content: "other org", Created: time.Now(),
	}
	svc := NewModerationService(store, nil, nil, testLogger())
	admin := auth.Caller{UserID: "admin", AdminOrgs: []string{"org-1"}}

	_, err := svc.BulkApprove(context.Background(), admin, ModerationTargets{
		ResourceComments: []string{"c1", "c3"},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.GetStatusCode(err))

	// The batch rolled back as a whole, including the authorized target.
	assert.False(t, store.comments["c1"].Approval)
}

func TestBulkApproveEmptyTargets(t *testing.T) {
	svc := NewModerationService(seedModerationFixture(t), nil, nil, testLogger())

	_, err := svc.BulkApprove(context.Background(), auth.Caller{UserID: "admin", Sysadmin: true}, ModerationTargets{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.GetStatusCode(err))
}

func TestBulkDeleteRecomputesSummaries(t *testing.T) {
	store := seedModerationFixture(t)
	svc := NewModerationService(store, nil, nil, testLogger())
	admin := auth.Caller{UserID: "admin", AdminOrgs: []string{"org-1"}}

	result, err := svc.BulkDelete(context.Background(), admin, ModerationTargets{
		ResourceComments: []string{"c1", "c2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.ResourceComments)

	assert.NotContains(t, store.comments, "c1")
	summary := store.commentSummaries["res-a"]
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.CommentCount)
	assert.Equal(t, 0, summary.RatingCommentCount)
	assert.Zero(t, summary.Rating)
}

func TestApproveReplyRequiresApprovedParent(t *testing.T) {
	store := seedModerationFixture(t)
	store.replies["r1"] = &models.ResourceCommentReply{
		ID: "r1", ResourceCommentID: "c1", Content: "we are on it",
		CreatorUserID: "admin", Created: time.Now(),
	}
	svc := NewModerationService(store, nil, nil, testLogger())
	admin := auth.Caller{UserID: "admin", AdminOrgs: []string{"org-1"}}

	// c1 is still unapproved, so the reply cannot surface yet.
	err := svc.ApproveReply(context.Background(), admin, "r1")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperrors.GetStatusCode(err))
	assert.False(t, store.replies["r1"].Approval)

	store.comments["c1"].Approval = true
	require.NoError(t, svc.ApproveReply(context.Background(), admin, "r1"))
	assert.True(t, store.replies["r1"].Approval)
}

func TestApproveReplyMissingReplyHidesExistence(t *testing.T) {
	svc := NewModerationService(seedModerationFixture(t), nil, nil, testLogger())

	err := svc.ApproveReply(context.Background(), auth.Caller{UserID: "admin", Sysadmin: true}, "no-such-reply")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, apperrors.NotFoundMessage, appErr.Message)
}

func TestSetReactionUpsertsSingleRow(t *testing.T) {
	store := seedModerationFixture(t)
	svc := NewModerationService(store, nil, nil, testLogger())
	admin := auth.Caller{UserID: "admin", AdminOrgs: []string{"org-1"}}
	ctx := context.Background()

	require.NoError(t, svc.SetReaction(ctx, admin, "c1", models.StatusInProgress, false))
	require.NoError(t, svc.SetReaction(ctx, admin, "c1", models.StatusCompleted, true))

	reaction := store.reactions["c1"]
	require.NotNil(t, reaction)
	assert.Equal(t, models.StatusCompleted, reaction.ResponseStatus)
	assert.True(t, reaction.AdminLiked)
	assert.Len(t, store.reactions, 1)
}

func TestSetReactionRejectsUnknownStatus(t *testing.T) {
	svc := NewModerationService(seedModerationFixture(t), nil, nil, testLogger())

	err := svc.SetReaction(context.Background(), auth.Caller{UserID: "admin", Sysadmin: true}, "c1", models.ResponseStatus("Bogus"), false)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.GetStatusCode(err))
}

func TestSetReactionForeignOrgHidesExistence(t *testing.T) {
	svc := NewModerationService(seedModerationFixture(t), nil, nil, testLogger())
	outsider := auth.Caller{UserID: "other", AdminOrgs: []string{"org-2"}}

	err := svc.SetReaction(context.Background(), outsider, "c1", models.StatusCompleted, false)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.GetStatusCode(err))
}
