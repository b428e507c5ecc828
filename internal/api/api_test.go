package api

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/repository"
	"dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
)

// The handler tests stub the repositories by embedding the interface and
// overriding only the methods the exercised path calls. An unexpected call
// panics, which fails the test loudly.

type stubCatalog struct {
	repository.CatalogRepository
	contexts map[string]*models.ResourceContext
}

func (s *stubCatalog) GetResourceContext(_ context.Context, id string) (*models.ResourceContext, error) {
	return s.contexts[id], nil
}

func (s *stubCatalog) ListOrganizations(_ context.Context, _ []string) ([]models.Organization, error) {
	seen := make(map[string]bool)
	var orgs []models.Organization
	for _, rc := range s.contexts {
		if !seen[rc.Organization.ID] {
			seen[rc.Organization.ID] = true
			orgs = append(orgs, rc.Organization)
		}
	}
	return orgs, nil
}

type stubComments struct {
	repository.CommentRepository
	comments  map[string]*models.ResourceComment
	replies   map[string]*models.ResourceCommentReply
	created   []*models.ResourceComment
	reactions []*models.ResourceCommentReaction
	approved  []string
}

func (s *stubComments) CreateComment(_ context.Context, c *models.ResourceComment) error {
	s.created = append(s.created, c)
	return nil
}

func (s *stubComments) GetComment(_ context.Context, id string) (*models.ResourceComment, error) {
	return s.comments[id], nil
}

func (s *stubComments) GetReply(_ context.Context, id string) (*models.ResourceCommentReply, error) {
	return s.replies[id], nil
}

func (s *stubComments) ApproveReply(_ context.Context, id, _ string, _ time.Time) error {
	s.approved = append(s.approved, id)
	return nil
}

func (s *stubComments) UpsertReaction(_ context.Context, r *models.ResourceCommentReaction) error {
	s.reactions = append(s.reactions, r)
	return nil
}

type stubUtilizations struct {
	repository.UtilizationRepository
	utilizations map[string]*models.Utilization
}

func (s *stubUtilizations) GetUtilization(_ context.Context, id string) (*models.Utilization, error) {
	return s.utilizations[id], nil
}

func (s *stubUtilizations) ListUtilizationComments(_ context.Context, _ string, _ models.ApprovalFilter) ([]models.UtilizationComment, error) {
	return nil, nil
}

func (s *stubUtilizations) ListIssueResolutions(_ context.Context, _ string) ([]models.IssueResolution, error) {
	return nil, nil
}

type stubSummaries struct {
	repository.SummaryRepository
}

func (stubSummaries) EnsureCommentSummary(context.Context, string) error { return nil }

func (stubSummaries) GetCommentSummary(context.Context, string) (*models.ResourceCommentSummary, error) {
	return nil, nil
}

func (stubSummaries) GetUtilizationSummary(context.Context, string) (*models.UtilizationSummary, error) {
	return nil, nil
}

func (stubSummaries) GetIssueResolutionSummary(context.Context, string) (*models.IssueResolutionSummary, error) {
	return nil, nil
}

func (stubSummaries) GetDownloadSummary(context.Context, string) (*models.DownloadSummary, error) {
	return nil, nil
}

func (stubSummaries) GetLikeSummary(context.Context, string) (*models.ResourceLikeSummary, error) {
	return nil, nil
}

type stubMoralChecks struct {
	repository.MoralCheckRepository
	logs []*models.MoralCheckLog
}

func (s *stubMoralChecks) CreateLog(_ context.Context, l *models.MoralCheckLog) error {
	s.logs = append(s.logs, l)
	return nil
}

func (s *stubMoralChecks) ListLogs(_ context.Context, _ string, _ models.MoralCheckParentKind) ([]models.MoralCheckLog, error) {
	var out []models.MoralCheckLog
	for _, l := range s.logs {
		out = append(out, *l)
	}
	return out, nil
}

type stubFeedback struct {
	repository.FeedbackRepository
	items []models.FeedbackItem
}

func (s *stubFeedback) ListResourceCommentItems(_ context.Context, _ repository.FeedbackScope) ([]models.FeedbackItem, error) {
	return s.filter(models.FeedbackResourceComment), nil
}

func (s *stubFeedback) ListUtilizationItems(_ context.Context, _ repository.FeedbackScope) ([]models.FeedbackItem, error) {
	return s.filter(models.FeedbackUtilization), nil
}

func (s *stubFeedback) ListUtilizationCommentItems(_ context.Context, _ repository.FeedbackScope) ([]models.FeedbackItem, error) {
	return s.filter(models.FeedbackUtilizationComment), nil
}

func (s *stubFeedback) filter(kind models.FeedbackType) []models.FeedbackItem {
	var out []models.FeedbackItem
	for _, item := range s.items {
		if item.Type == kind {
			out = append(out, item)
		}
	}
	return out
}

// stubStore bundles the stubs behind the Store interface.
type stubStore struct {
	repository.Store
	catalog      *stubCatalog
	comments     *stubComments
	utilizations *stubUtilizations
	summaries    stubSummaries
	moralChecks  *stubMoralChecks
	feedback     *stubFeedback
}

func newStubStore() *stubStore {
	return &stubStore{
		catalog:      &stubCatalog{contexts: make(map[string]*models.ResourceContext)},
		comments:     &stubComments{comments: make(map[string]*models.ResourceComment), replies: make(map[string]*models.ResourceCommentReply)},
		utilizations: &stubUtilizations{utilizations: make(map[string]*models.Utilization)},
		moralChecks:  &stubMoralChecks{},
		feedback:     &stubFeedback{},
	}
}

func (s *stubStore) Comments() repository.CommentRepository { return s.comments }

func (s *stubStore) Utilizations() repository.UtilizationRepository { return s.utilizations }

func (s *stubStore) Summaries() repository.SummaryRepository { return s.summaries }

func (s *stubStore) Catalog() repository.CatalogRepository { return s.catalog }

func (s *stubStore) MoralCheckLogs() repository.MoralCheckRepository { return s.moralChecks }

func (s *stubStore) Feedback() repository.FeedbackRepository { return s.feedback }

func (s *stubStore) InTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

func (s *stubStore) addResource(resourceID, resourceName, datasetName, orgID, orgName string) {
	s.catalog.contexts[resourceID] = &models.ResourceContext{
		Resource:     models.Resource{ID: resourceID, Name: resourceName, State: "active"},
		Dataset:      models.Dataset{ID: "ds-" + resourceID, Name: datasetName, Title: datasetName, OwnerOrg: orgID, State: "active"},
		Organization: models.Organization{ID: orgID, Name: orgName, Title: orgName},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

// newTestEngine builds a gin engine with the production error middleware and
// an optional caller injected the way the auth middleware would.
func newTestEngine(t *testing.T, caller *auth.Caller) (*gin.Engine, *gin.RouterGroup) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.SetGlobal(testLogger())

	engine := gin.New()
	engine.Use(errors.ErrorHandler())
	if caller != nil {
		engine.Use(func(c *gin.Context) {
			c.Set("caller", *caller)
			c.Next()
		})
	}
	return engine, engine.Group("/")
}

func noopLimiter() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}
