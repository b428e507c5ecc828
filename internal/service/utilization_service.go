package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/repository"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
	"dataset-feedback/backend/pkg/observability"
)

// SubmitUtilizationRequest is a public utilization submission.
type SubmitUtilizationRequest struct {
	ResourceID  string `json:"resource_id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// SubmitUtilizationCommentRequest is a public comment on a utilization.
type SubmitUtilizationCommentRequest struct {
	UtilizationID         string                 `json:"utilization_id"`
	Category              models.CommentCategory `json:"category"`
	Content               string                 `json:"content"`
	AttachedImageFilename *string                `json:"attached_image_filename"`
}

// UtilizationDetail is the utilization page read model.
type UtilizationDetail struct {
	Utilization          models.Utilization          `json:"utilization"`
	Comments             []models.UtilizationComment `json:"comments"`
	IssueResolutions     []models.IssueResolution    `json:"issue_resolutions"`
	IssueResolutionCount int                         `json:"issue_resolution_count"`
}

// UtilizationService handles utilization records, their comments and issue
// resolutions.
type UtilizationService struct {
	store repository.Store
	log   *logger.Logger
}

func NewUtilizationService(store repository.Store, log *logger.Logger) *UtilizationService {
	return &UtilizationService{store: store, log: log}
}

// SubmitUtilization stores a new unapproved utilization and makes sure the
// summary row for its resource exists.
func (s *UtilizationService) SubmitUtilization(ctx context.Context, req SubmitUtilizationRequest) (*models.Utilization, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidationError("utilization title is required")
	}

	rc, err := s.store.Catalog().GetResourceContext(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, apperrors.NewNotFoundError("resource not found")
	}

	util := &models.Utilization{
		ID:          uuid.NewString(),
		ResourceID:  req.ResourceID,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Created:     time.Now(),
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Utilizations().CreateUtilization(ctx, util); err != nil {
			return err
		}
		return tx.Summaries().EnsureUtilizationSummary(ctx, req.ResourceID)
	})
	if err != nil {
		return nil, err
	}

	observability.FeedbackSubmissions.WithLabelValues("utilization").Inc()
	s.log.Info("Utilization submitted", "resource_id", req.ResourceID, "utilization_id", util.ID)
	return util, nil
}

// ListUtilizations searches utilization records. The public sees approved
// rows only; an admin may include unapproved rows, and the keyword matches
// title or description.
func (s *UtilizationService) ListUtilizations(ctx context.Context, caller auth.Caller, resourceID, keyword string, includeUnapproved bool) ([]models.Utilization, error) {
	filter := models.OnlyApproved
	if includeUnapproved {
		if err := auth.RequireAnyAdmin(caller); err != nil {
			return nil, err
		}
		filter = models.ApprovalAll
	}
	return s.store.Utilizations().ListUtilizations(ctx, resourceID, keyword, filter)
}

// GetUtilizationDetail returns the utilization page. Unapproved
// utilizations are visible only to admins of the owning organization; to
// everyone else they do not exist.
func (s *UtilizationService) GetUtilizationDetail(ctx context.Context, caller auth.Caller, id string) (*UtilizationDetail, error) {
	util, err := s.store.Utilizations().GetUtilization(ctx, id)
	if err != nil {
		return nil, err
	}
	if util == nil {
		return nil, apperrors.NewNotFoundOrForbidden()
	}

	rc, err := s.store.Catalog().GetResourceContext(ctx, util.ResourceID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, apperrors.NewNotFoundOrForbidden()
	}

	isAdmin := caller.HasAdminRole(rc.Organization.ID)
	if !util.Approval && !isAdmin {
		return nil, apperrors.NewNotFoundOrForbidden()
	}

	filter := models.OnlyApproved
	if isAdmin {
		filter = models.ApprovalAll
	}
	comments, err := s.store.Utilizations().ListUtilizationComments(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	resolutions, err := s.store.Utilizations().ListIssueResolutions(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &UtilizationDetail{
		Utilization:      *util,
		Comments:         comments,
		IssueResolutions: resolutions,
	}
	summary, err := s.store.Summaries().GetIssueResolutionSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary != nil {
		detail.IssueResolutionCount = summary.IssueResolutionCount
	}
	return detail, nil
}

// UpdateUtilization edits a record's descriptive fields. Admin only.
func (s *UtilizationService) UpdateUtilization(ctx context.Context, caller auth.Caller, id, title, url, description string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.NewValidationError("utilization title is required")
	}

	util, err := s.store.Utilizations().GetUtilization(ctx, id)
	if err != nil {
		return err
	}
	if util == nil {
		return apperrors.NewNotFoundOrForbidden()
	}
	if err := s.requireResourceAdmin(ctx, caller, util.ResourceID); err != nil {
		return err
	}

	return s.store.Utilizations().UpdateUtilization(ctx, id, title, url, description, time.Now())
}

// SubmitUtilizationComment stores a new unapproved comment on an approved
// utilization.
func (s *UtilizationService) SubmitUtilizationComment(ctx context.Context, req SubmitUtilizationCommentRequest) (*models.UtilizationComment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.NewValidationError("comment content is required")
	}
	if !models.ValidCommentCategory(req.Category) {
		return nil, apperrors.NewValidationError("unknown comment category")
	}

	util, err := s.store.Utilizations().GetUtilization(ctx, req.UtilizationID)
	if err != nil {
		return nil, err
	}
	if util == nil || !util.Approval {
		return nil, apperrors.NewNotFoundError("utilization not found")
	}

	comment := &models.UtilizationComment{
		ID:                    uuid.NewString(),
		UtilizationID:         req.UtilizationID,
		Category:              req.Category,
		Content:               req.Content,
		AttachedImageFilename: req.AttachedImageFilename,
		Created:               time.Now(),
	}
	if err := s.store.Utilizations().CreateUtilizationComment(ctx, comment); err != nil {
		return nil, err
	}

	observability.FeedbackSubmissions.WithLabelValues("utilization_comment").Inc()
	return comment, nil
}

// CreateIssueResolution records that a concern was addressed and bumps the
// per-utilization resolution counter in the same transaction.
func (s *UtilizationService) CreateIssueResolution(ctx context.Context, caller auth.Caller, utilizationID, description string) (*models.IssueResolution, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewValidationError("description is required")
	}

	util, err := s.store.Utilizations().GetUtilization(ctx, utilizationID)
	if err != nil {
		return nil, err
	}
	if util == nil {
		return nil, apperrors.NewNotFoundOrForbidden()
	}
	if err := s.requireResourceAdmin(ctx, caller, util.ResourceID); err != nil {
		return nil, err
	}

	resolution := &models.IssueResolution{
		ID:            uuid.NewString(),
		UtilizationID: utilizationID,
		Description:   description,
		Created:       time.Now(),
		CreatorUserID: caller.UserID,
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Utilizations().CreateIssueResolution(ctx, resolution); err != nil {
			return err
		}
		if err := tx.Summaries().EnsureIssueResolutionSummary(ctx, utilizationID); err != nil {
			return err
		}
		return tx.Summaries().RefreshIssueResolutionSummary(ctx, utilizationID)
	})
	if err != nil {
		return nil, err
	}
	return resolution, nil
}

func (s *UtilizationService) requireResourceAdmin(ctx context.Context, caller auth.Caller, resourceID string) error {
	rc, err := s.store.Catalog().GetResourceContext(ctx, resourceID)
	if err != nil {
		return err
	}
	if rc == nil {
		return apperrors.NewNotFoundOrForbidden()
	}
	return auth.RequireAdmin(caller, rc.Organization.ID)
}
