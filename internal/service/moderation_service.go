package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/repository"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
	"dataset-feedback/backend/pkg/observability"
)

// ModerationTargets names the rows a bulk action applies to, split by kind.
type ModerationTargets struct {
	ResourceComments    []string `json:"resource_comments"`
	Utilizations        []string `json:"utilizations"`
	UtilizationComments []string `json:"utilization_comments"`
}

func (t ModerationTargets) empty() bool {
	return len(t.ResourceComments) == 0 && len(t.Utilizations) == 0 && len(t.UtilizationComments) == 0
}

// ModerationResult reports how many rows each kind actually changed.
// Already-approved rows in a bulk approval are skipped silently, so the
// counts can be lower than the number of targets.
type ModerationResult struct {
	ResourceComments    int64 `json:"resource_comments"`
	Utilizations        int64 `json:"utilizations"`
	UtilizationComments int64 `json:"utilization_comments"`
}

func (r ModerationResult) total() int64 {
	return r.ResourceComments + r.Utilizations + r.UtilizationComments
}

// ModerationEvent describes a committed bulk action, for notification hooks.
type ModerationEvent struct {
	Action      string
	UserID      string
	Result      ModerationResult
	ResourceIDs []string
}

// Notifier receives moderation events after the transaction commits. A
// failing notifier must not fail the action.
type Notifier interface {
	ModerationApplied(ctx context.Context, event ModerationEvent)
}

// NoopNotifier discards all events.
type NoopNotifier struct{}

func (NoopNotifier) ModerationApplied(context.Context, ModerationEvent) {}

// AggregateInvalidator drops cached aggregate read models whose summary rows
// were rewritten by a committed transaction.
type AggregateInvalidator interface {
	InvalidateAggregates(ctx context.Context, resourceIDs ...string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateAggregates(context.Context, ...string) {}

// ModerationService applies admin decisions to feedback: bulk approval and
// deletion, reply approval, and the per-comment reaction. Every mutation and
// its summary refresh commit in one transaction; the cached aggregates for
// the affected resources are dropped right after commit so public reads do
// not keep serving pre-decision counts.
type ModerationService struct {
	store       repository.Store
	invalidator AggregateInvalidator
	notifier    Notifier
	log         *logger.Logger
}

func NewModerationService(store repository.Store, invalidator AggregateInvalidator, notifier Notifier, log *logger.Logger) *ModerationService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ModerationService{store: store, invalidator: invalidator, notifier: notifier, log: log}
}

// BulkApprove approves the targeted feedback and refreshes every affected
// summary. The caller must hold the admin role for every owning
// organization; one unauthorized target rejects the whole batch.
func (s *ModerationService) BulkApprove(ctx context.Context, caller auth.Caller, targets ModerationTargets) (*ModerationResult, error) {
	if targets.empty() {
		return nil, apperrors.NewValidationError("no targets given")
	}

	var result ModerationResult
	var resourceIDs []string
	now := time.Now()

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		affected, err := s.collectAffected(ctx, tx, targets)
		if err != nil {
			return err
		}
		if err := s.authorizeResources(ctx, tx, caller, affected.allResourceIDs()); err != nil {
			return err
		}
		resourceIDs = affected.allResourceIDs()

		n, err := tx.Comments().ApproveComments(ctx, targets.ResourceComments, caller.UserID, now)
		if err != nil {
			return err
		}
		result.ResourceComments = n

		n, err = tx.Utilizations().ApproveUtilizations(ctx, targets.Utilizations, caller.UserID, now)
		if err != nil {
			return err
		}
		result.Utilizations = n

		n, err = tx.Utilizations().ApproveUtilizationComments(ctx, targets.UtilizationComments, caller.UserID, now)
		if err != nil {
			return err
		}
		result.UtilizationComments = n

		return s.refreshSummaries(ctx, tx, affected)
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateAggregates(ctx, resourceIDs...)
	observability.ModerationActions.WithLabelValues("approve").Add(float64(result.total()))
	s.log.Info("Bulk approval applied",
		"user_id", caller.UserID,
		"comments", result.ResourceComments,
		"utilizations", result.Utilizations,
		"utilization_comments", result.UtilizationComments,
	)
	s.notifier.ModerationApplied(ctx, ModerationEvent{
		Action:      "approve",
		UserID:      caller.UserID,
		Result:      result,
		ResourceIDs: resourceIDs,
	})
	return &result, nil
}

// BulkDelete removes the targeted feedback. Affected resources are read
// before the delete so the summaries can be recomputed afterwards.
func (s *ModerationService) BulkDelete(ctx context.Context, caller auth.Caller, targets ModerationTargets) (*ModerationResult, error) {
	if targets.empty() {
		return nil, apperrors.NewValidationError("no targets given")
	}

	var result ModerationResult
	var resourceIDs []string

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		affected, err := s.collectAffected(ctx, tx, targets)
		if err != nil {
			return err
		}
		if err := s.authorizeResources(ctx, tx, caller, affected.allResourceIDs()); err != nil {
			return err
		}
		resourceIDs = affected.allResourceIDs()

		n, err := tx.Comments().DeleteComments(ctx, targets.ResourceComments)
		if err != nil {
			return err
		}
		result.ResourceComments = n

		n, err = tx.Utilizations().DeleteUtilizations(ctx, targets.Utilizations)
		if err != nil {
			return err
		}
		result.Utilizations = n

		n, err = tx.Utilizations().DeleteUtilizationComments(ctx, targets.UtilizationComments)
		if err != nil {
			return err
		}
		result.UtilizationComments = n

		return s.refreshSummaries(ctx, tx, affected)
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateAggregates(ctx, resourceIDs...)
	observability.ModerationActions.WithLabelValues("delete").Add(float64(result.total()))
	s.log.Info("Bulk deletion applied",
		"user_id", caller.UserID,
		"comments", result.ResourceComments,
		"utilizations", result.Utilizations,
		"utilization_comments", result.UtilizationComments,
	)
	s.notifier.ModerationApplied(ctx, ModerationEvent{
		Action:      "delete",
		UserID:      caller.UserID,
		Result:      result,
		ResourceIDs: resourceIDs,
	})
	return &result, nil
}

// ApproveReply approves an admin reply. The parent comment must already be
// approved; otherwise the reply would surface on a page that does not show
// its thread.
func (s *ModerationService) ApproveReply(ctx context.Context, caller auth.Caller, replyID string) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		reply, err := tx.Comments().GetReply(ctx, replyID)
		if err != nil {
			return err
		}
		if reply == nil {
			return apperrors.NewNotFoundOrForbidden()
		}

		parent, err := tx.Comments().GetComment(ctx, reply.ResourceCommentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperrors.NewNotFoundOrForbidden()
		}

		if err := s.authorizeResources(ctx, tx, caller, []string{parent.ResourceID}); err != nil {
			return err
		}

		if !parent.Approval {
			return apperrors.NewPermissionPrecondition("the parent comment is not approved")
		}

		return tx.Comments().ApproveReply(ctx, replyID, caller.UserID, time.Now())
	})
}

// SetReaction records the moderation response state for a comment. Unknown
// statuses are rejected before any write.
func (s *ModerationService) SetReaction(ctx context.Context, caller auth.Caller, commentID string, status models.ResponseStatus, adminLiked bool) error {
	if !models.ValidResponseStatus(status) {
		return apperrors.NewValidationError("unknown response status")
	}

	return s.store.InTx(ctx, func(tx repository.Store) error {
		comment, err := tx.Comments().GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if comment == nil {
			return apperrors.NewNotFoundOrForbidden()
		}
		if err := s.authorizeResources(ctx, tx, caller, []string{comment.ResourceID}); err != nil {
			return err
		}

		now := time.Now()
		return tx.Comments().UpsertReaction(ctx, &models.ResourceCommentReaction{
			ID:                uuid.NewString(),
			ResourceCommentID: commentID,
			ResponseStatus:    status,
			AdminLiked:        adminLiked,
			Created:           now,
			Updated:           &now,
			UpdaterUserID:     &caller.UserID,
		})
	})
}

// affectedRows captures, before a bulk mutation, which denormalized rows
// will need recomputing afterwards.
type affectedRows struct {
	commentResourceIDs     []string
	utilizationResourceIDs []string
	utilizationIDs         []string
	utilCommentResourceIDs []string
}

func (a affectedRows) allResourceIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{a.commentResourceIDs, a.utilizationResourceIDs, a.utilCommentResourceIDs} {
		for _, id := range group {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func (s *ModerationService) collectAffected(ctx context.Context, tx repository.Store, targets ModerationTargets) (affectedRows, error) {
	var a affectedRows
	var err error

	a.commentResourceIDs, err = tx.Comments().ResourceIDsForComments(ctx, targets.ResourceComments)
	if err != nil {
		return a, err
	}
	a.utilizationResourceIDs, err = tx.Utilizations().ResourceIDsForUtilizations(ctx, targets.Utilizations)
	if err != nil {
		return a, err
	}
	a.utilizationIDs, err = tx.Utilizations().UtilizationIDsForComments(ctx, targets.UtilizationComments)
	if err != nil {
		return a, err
	}
	a.utilCommentResourceIDs, err = tx.Utilizations().ResourceIDsForUtilizations(ctx, a.utilizationIDs)
	if err != nil {
		return a, err
	}
	return a, nil
}

// authorizeResources requires the admin role for every owning organization.
// A resource that no longer resolves, because it or its dataset was removed
// from the catalog, yields the same 404 as a missing row.
func (s *ModerationService) authorizeResources(ctx context.Context, tx repository.Store, caller auth.Caller, resourceIDs []string) error {
	for _, id := range resourceIDs {
		rc, err := tx.Catalog().GetResourceContext(ctx, id)
		if err != nil {
			return err
		}
		if rc == nil {
			return apperrors.NewNotFoundOrForbidden()
		}
		if err := auth.RequireAdmin(caller, rc.Organization.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ModerationService) refreshSummaries(ctx context.Context, tx repository.Store, a affectedRows) error {
	for _, id := range a.commentResourceIDs {
		if err := tx.Summaries().RefreshCommentSummary(ctx, id); err != nil {
			return err
		}
		observability.SummaryRefreshes.WithLabelValues("comment").Inc()
	}
	for _, id := range a.utilizationResourceIDs {
		if err := tx.Summaries().RefreshUtilizationSummary(ctx, id); err != nil {
			return err
		}
		observability.SummaryRefreshes.WithLabelValues("utilization").Inc()
	}
	for _, id := range a.utilizationIDs {
		if err := tx.Utilizations().RefreshUtilizationCommentCount(ctx, id); err != nil {
			return err
		}
		observability.SummaryRefreshes.WithLabelValues("utilization_comment_count").Inc()
	}
	return nil
}
