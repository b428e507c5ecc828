package repository

import (
	"context"
	"time"

	"dataset-feedback/backend/internal/models"
)

// FeedbackScope narrows the admin listing queries to what the caller may
// see. A nil Orgs slice means unscoped (sysadmin).
type FeedbackScope struct {
	Orgs []string
}

// CommentRepository covers resource comments, admin replies and the 1:1
// moderation reaction.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.ResourceComment) error
	GetComment(ctx context.Context, id string) (*models.ResourceComment, error)
	GetCommentsByIDs(ctx context.Context, ids []string) ([]models.ResourceComment, error)
	ListComments(ctx context.Context, resourceID string, filter models.ApprovalFilter) ([]models.ResourceComment, error)
	ApproveComments(ctx context.Context, ids []string, userID string, at time.Time) (int64, error)
	DeleteComments(ctx context.Context, ids []string) (int64, error)
	ResourceIDsForComments(ctx context.Context, ids []string) ([]string, error)

	CreateReply(ctx context.Context, reply *models.ResourceCommentReply) error
	GetReply(ctx context.Context, id string) (*models.ResourceCommentReply, error)
	ListReplies(ctx context.Context, commentID string, filter models.ApprovalFilter) ([]models.ResourceCommentReply, error)
	ApproveReply(ctx context.Context, id, userID string, at time.Time) error

	UpsertReaction(ctx context.Context, reaction *models.ResourceCommentReaction) error
	GetReaction(ctx context.Context, commentID string) (*models.ResourceCommentReaction, error)
}

// UtilizationRepository covers utilization records, their comments and
// issue resolutions.
type UtilizationRepository interface {
	CreateUtilization(ctx context.Context, util *models.Utilization) error
	GetUtilization(ctx context.Context, id string) (*models.Utilization, error)
	GetUtilizationsByIDs(ctx context.Context, ids []string) ([]models.Utilization, error)
	ListUtilizations(ctx context.Context, resourceID, keyword string, filter models.ApprovalFilter) ([]models.Utilization, error)
	UpdateUtilization(ctx context.Context, id, title, url, description string, at time.Time) error
	ApproveUtilizations(ctx context.Context, ids []string, userID string, at time.Time) (int64, error)
	DeleteUtilizations(ctx context.Context, ids []string) (int64, error)
	ResourceIDsForUtilizations(ctx context.Context, ids []string) ([]string, error)

	CreateUtilizationComment(ctx context.Context, comment *models.UtilizationComment) error
	GetUtilizationComment(ctx context.Context, id string) (*models.UtilizationComment, error)
	GetUtilizationCommentsByIDs(ctx context.Context, ids []string) ([]models.UtilizationComment, error)
	ListUtilizationComments(ctx context.Context, utilizationID string, filter models.ApprovalFilter) ([]models.UtilizationComment, error)
	ApproveUtilizationComments(ctx context.Context, ids []string, userID string, at time.Time) (int64, error)
	DeleteUtilizationComments(ctx context.Context, ids []string) (int64, error)
	UtilizationIDsForComments(ctx context.Context, ids []string) ([]string, error)
	RefreshUtilizationCommentCount(ctx context.Context, utilizationID string) error

	CreateIssueResolution(ctx context.Context, res *models.IssueResolution) error
	ListIssueResolutions(ctx context.Context, utilizationID string) ([]models.IssueResolution, error)
}

// SummaryRepository maintains the denormalized per-resource aggregates.
// Ensure* inserts are idempotent; Refresh* recomputes from source rows.
type SummaryRepository interface {
	EnsureCommentSummary(ctx context.Context, resourceID string) error
	RefreshCommentSummary(ctx context.Context, resourceID string) error
	GetCommentSummary(ctx context.Context, resourceID string) (*models.ResourceCommentSummary, error)

	EnsureUtilizationSummary(ctx context.Context, resourceID string) error
	RefreshUtilizationSummary(ctx context.Context, resourceID string) error
	GetUtilizationSummary(ctx context.Context, resourceID string) (*models.UtilizationSummary, error)

	EnsureIssueResolutionSummary(ctx context.Context, utilizationID string) error
	RefreshIssueResolutionSummary(ctx context.Context, utilizationID string) error
	GetIssueResolutionSummary(ctx context.Context, utilizationID string) (*models.IssueResolutionSummary, error)

	IncrementDownloadCount(ctx context.Context, resourceID string) error
	GetDownloadSummary(ctx context.Context, resourceID string) (*models.DownloadSummary, error)

	IncrementLikeCount(ctx context.Context, resourceID string, delta int) error
	GetLikeSummary(ctx context.Context, resourceID string) (*models.ResourceLikeSummary, error)
}

// CatalogRepository reads the projected catalog tables. The engine never
// writes these; they mirror the hosting portal.
type CatalogRepository interface {
	GetResourceContext(ctx context.Context, resourceID string) (*models.ResourceContext, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	ListOrganizations(ctx context.Context, ids []string) ([]models.Organization, error)
}

// MoralCheckRepository appends audit rows for the suggestion loop.
type MoralCheckRepository interface {
	CreateLog(ctx context.Context, log *models.MoralCheckLog) error
	ListLogs(ctx context.Context, parentID string, kind models.MoralCheckParentKind) ([]models.MoralCheckLog, error)
}

// FeedbackRepository projects each feedback kind into the common listing
// row. Org scoping is pushed into SQL so unauthorized rows never leave the
// database.
type FeedbackRepository interface {
	ListResourceCommentItems(ctx context.Context, scope FeedbackScope) ([]models.FeedbackItem, error)
	ListUtilizationItems(ctx context.Context, scope FeedbackScope) ([]models.FeedbackItem, error)
	ListUtilizationCommentItems(ctx context.Context, scope FeedbackScope) ([]models.FeedbackItem, error)
}

// Store bundles the repositories behind one handle so services can take a
// single dependency. InTx runs fn against a Store bound to one database
// transaction; returning an error rolls everything back.
type Store interface {
	Comments() CommentRepository
	Utilizations() UtilizationRepository
	Summaries() SummaryRepository
	Catalog() CatalogRepository
	MoralCheckLogs() MoralCheckRepository
	Feedback() FeedbackRepository

	InTx(ctx context.Context, fn func(Store) error) error
}
