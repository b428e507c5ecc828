package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dataset-feedback/backend/ai"
	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/repository"
	"dataset-feedback/backend/pkg/config"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
	"dataset-feedback/backend/pkg/observability"
)

// CaptchaVerifier validates a submission challenge token. Unlike the moral
// check this gate fails closed: an unverifiable token rejects the
// submission.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// ScreenResult is the outcome of the pre-submission screening.
type ScreenResult struct {
	// Passed means the text may be submitted as written.
	Passed bool `json:"passed"`
	// Suggestion is a softened rewrite, set only when Passed is false.
	Suggestion string `json:"suggestion,omitempty"`
}

// RecordActionRequest appends one moral check audit row.
type RecordActionRequest struct {
	ParentID   string                      `json:"parent_id"`
	ParentKind models.MoralCheckParentKind `json:"parent_kind"`
	Action     models.MoralCheckAction     `json:"action"`
	Input      string                      `json:"input_comment"`
	Suggested  string                      `json:"suggested_comment"`
	Output     string                      `json:"output_comment"`
}

// SuggestionService runs the pre-submission screening pipeline: captcha
// verification, the AI moral check with its suggestion loop, and the
// append-only audit log behind it.
type SuggestionService struct {
	store   repository.Store
	checker ai.MoralChecker
	captcha CaptchaVerifier
	cfg     *config.Config
	log     *logger.Logger
}

func NewSuggestionService(store repository.Store, checker ai.MoralChecker, captcha CaptchaVerifier, cfg *config.Config, log *logger.Logger) *SuggestionService {
	return &SuggestionService{store: store, checker: checker, captcha: captcha, cfg: cfg, log: log}
}

// VerifyCaptcha checks the challenge token when the captcha gate is on.
// Admins of the owning organization are exempt unless ForceForEveryone is
// set.
func (s *SuggestionService) VerifyCaptcha(ctx context.Context, caller auth.Caller, orgID, token, remoteIP string) error {
	if !s.cfg.Captcha.Enabled || s.captcha == nil {
		return nil
	}
	if !s.cfg.Captcha.ForceForEveryone && caller.HasAdminRole(orgID) {
		return nil
	}
	if err := s.captcha.Verify(ctx, token, remoteIP); err != nil {
		return apperrors.NewValidationError("captcha verification failed")
	}
	return nil
}

// Screen runs the moral check on submission text. The check fails open: if
// the service is down or misconfigured the text passes and the outage is
// logged, because feedback must keep flowing when the AI does not.
func (s *SuggestionService) Screen(ctx context.Context, caller auth.Caller, org models.Organization, text string) ScreenResult {
	if s.checker == nil || !s.cfg.MoralCheckEnabledFor(org.Name) {
		return ScreenResult{Passed: true}
	}
	if !s.cfg.Captcha.ForceForEveryone && caller.HasAdminRole(org.ID) {
		return ScreenResult{Passed: true}
	}

	ok, err := s.checker.Check(ctx, text)
	if err != nil {
		observability.MoralCheckRequests.WithLabelValues("error").Inc()
		s.log.LogError(apperrors.NewExternalServiceDegraded("moral check", err), "Moral check unavailable, passing submission through")
		return ScreenResult{Passed: true}
	}
	if ok {
		observability.MoralCheckRequests.WithLabelValues("pass").Inc()
		return ScreenResult{Passed: true}
	}

	suggestion, err := s.checker.Suggest(ctx, text)
	if err != nil {
		observability.MoralCheckRequests.WithLabelValues("error").Inc()
		s.log.LogError(apperrors.NewExternalServiceDegraded("moral check", err), "Moral check suggestion unavailable, passing submission through")
		return ScreenResult{Passed: true}
	}
	observability.MoralCheckRequests.WithLabelValues("flagged").Inc()
	return ScreenResult{Passed: false, Suggestion: suggestion}
}

// ScreenSubmission runs the full pre-submission gate for text attached to a
// resource: captcha first (fail closed), then the moral check (fail open).
func (s *SuggestionService) ScreenSubmission(ctx context.Context, caller auth.Caller, resourceID, text, captchaToken, remoteIP string) (ScreenResult, error) {
	org, err := s.resolveOrg(ctx, resourceID)
	if err != nil {
		return ScreenResult{}, err
	}
	if err := s.VerifyCaptcha(ctx, caller, org.ID, captchaToken, remoteIP); err != nil {
		return ScreenResult{}, err
	}
	return s.Screen(ctx, caller, org, text), nil
}

// VerifyCaptchaForResource applies the captcha gate alone, for submissions
// that are not moral checked.
func (s *SuggestionService) VerifyCaptchaForResource(ctx context.Context, caller auth.Caller, resourceID, captchaToken, remoteIP string) error {
	org, err := s.resolveOrg(ctx, resourceID)
	if err != nil {
		return err
	}
	return s.VerifyCaptcha(ctx, caller, org.ID, captchaToken, remoteIP)
}

func (s *SuggestionService) resolveOrg(ctx context.Context, resourceID string) (models.Organization, error) {
	rc, err := s.store.Catalog().GetResourceContext(ctx, resourceID)
	if err != nil {
		return models.Organization{}, err
	}
	if rc == nil {
		return models.Organization{}, apperrors.NewNotFoundError("resource not found")
	}
	return rc.Organization, nil
}

// RecordAction appends one audit row for the suggestion dialog. Rows are
// never updated; each user interaction adds a new one.
func (s *SuggestionService) RecordAction(ctx context.Context, req RecordActionRequest) error {
	if req.ParentID == "" {
		return apperrors.NewValidationError("parent id is required")
	}
	switch req.ParentKind {
	case models.MoralCheckResourceComment, models.MoralCheckUtilizationComment:
	default:
		return apperrors.NewValidationError("unknown parent kind")
	}
	if !models.ValidMoralCheckAction(req.Action) {
		return apperrors.NewValidationError("unknown moral check action")
	}

	return s.store.MoralCheckLogs().CreateLog(ctx, &models.MoralCheckLog{
		ID:               uuid.NewString(),
		ParentID:         req.ParentID,
		ParentKind:       req.ParentKind,
		Action:           req.Action,
		InputComment:     req.Input,
		SuggestedComment: req.Suggested,
		OutputComment:    req.Output,
		Timestamp:        time.Now(),
	})
}

// ListActions returns the audit trail for one comment, oldest first.
func (s *SuggestionService) ListActions(ctx context.Context, parentID string, kind models.MoralCheckParentKind) ([]models.MoralCheckLog, error) {
	return s.store.MoralCheckLogs().ListLogs(ctx, parentID, kind)
}
