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

// SubmitCommentRequest is a public comment submission.
type SubmitCommentRequest struct {
	ResourceID            string                 `json:"resource_id"`
	Category              models.CommentCategory `json:"category"`
	Content               string                 `json:"content"`
	Rating                *int                   `json:"rating"`
	AttachedImageFilename *string                `json:"attached_image_filename"`
}

// CommentThread is a comment with its visible replies and, for admins, the
// moderation reaction.
type CommentThread struct {
	Comment  models.ResourceComment          `json:"comment"`
	Replies  []models.ResourceCommentReply   `json:"replies"`
	Reaction *models.ResourceCommentReaction `json:"reaction,omitempty"`
}

// CommentService handles the public comment surface: submission, listing,
// and admin replies.
type CommentService struct {
	store repository.Store
	log   *logger.Logger
}

func NewCommentService(store repository.Store, log *logger.Logger) *CommentService {
	return &CommentService{store: store, log: log}
}

// SubmitComment stores a new unapproved comment and makes sure the summary
// row for its resource exists. The comment is invisible to the public until
// an admin approves it.
func (s *CommentService) SubmitComment(ctx context.Context, req SubmitCommentRequest) (*models.ResourceComment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.NewValidationError("comment content is required")
	}
	if !models.ValidCommentCategory(req.Category) {
		return nil, apperrors.NewValidationError("unknown comment category")
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5")
	}

	rc, err := s.store.Catalog().GetResourceContext(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, apperrors.NewNotFoundError("resource not found")
	}

	comment := &models.ResourceComment{
		ID:                    uuid.NewString(),
		ResourceID:            req.ResourceID,
		Category:              req.Category,
		Content:               req.Content,
		Rating:                req.Rating,
		AttachedImageFilename: req.AttachedImageFilename,
		Created:               time.Now(),
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Comments().CreateComment(ctx, comment); err != nil {
			return err
		}
		return tx.Summaries().EnsureCommentSummary(ctx, req.ResourceID)
	})
	if err != nil {
		return nil, err
	}

	observability.FeedbackSubmissions.WithLabelValues("resource_comment").Inc()
	s.log.Info("Comment submitted", "resource_id", req.ResourceID, "comment_id", comment.ID)
	return comment, nil
}

// ListCommentThreads returns the comments on a resource. The public sees
// approved comments and approved replies only; an admin of the owning
// organization sees everything including reactions. A non-admin asking for
// unapproved content gets the existence-hiding 404.
func (s *CommentService) ListCommentThreads(ctx context.Context, caller auth.Caller, resourceID string, includeUnapproved bool) ([]CommentThread, error) {
	rc, err := s.store.Catalog().GetResourceContext(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, apperrors.NewNotFoundError("resource not found")
	}

	filter := models.OnlyApproved
	isAdmin := caller.HasAdminRole(rc.Organization.ID)
	if includeUnapproved {
		if !isAdmin {
			return nil, apperrors.NewNotFoundOrForbidden()
		}
		filter = models.ApprovalAll
	}

	comments, err := s.store.Comments().ListComments(ctx, resourceID, filter)
	if err != nil {
		return nil, err
	}

	threads := make([]CommentThread, 0, len(comments))
	for _, comment := range comments {
		replies, err := s.store.Comments().ListReplies(ctx, comment.ID, filter)
		if err != nil {
			return nil, err
		}
		thread := CommentThread{Comment: comment, Replies: replies}
		if isAdmin {
			reaction, err := s.store.Comments().GetReaction(ctx, comment.ID)
			if err != nil {
				return nil, err
			}
			thread.Reaction = reaction
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

// CreateReply stores an admin reply to a comment. Replies start unapproved
// like any other feedback.
func (s *CommentService) CreateReply(ctx context.Context, caller auth.Caller, commentID, content string, attachedImage *string) (*models.ResourceCommentReply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("reply content is required")
	}

	comment, err := s.store.Comments().GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperrors.NewNotFoundOrForbidden()
	}

	rc, err := s.store.Catalog().GetResourceContext(ctx, comment.ResourceID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, apperrors.NewNotFoundOrForbidden()
	}
	if err := auth.RequireAdmin(caller, rc.Organization.ID); err != nil {
		return nil, err
	}

	reply := &models.ResourceCommentReply{
		ID:                    uuid.NewString(),
		ResourceCommentID:     commentID,
		Content:               content,
		CreatorUserID:         caller.UserID,
		AttachedImageFilename: attachedImage,
		Created:               time.Now(),
	}
	if err := s.store.Comments().CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
