package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dataset-feedback/backend/internal/models"
)

type commentRepository struct {
	db *gorm.DB
}

func applyApproval(q *gorm.DB, filter models.ApprovalFilter) *gorm.DB {
	switch filter {
	case models.OnlyApproved:
		return q.Where("approval = ?", true)
	case models.OnlyUnapproved:
		return q.Where("approval = ?", false)
	}
	return q
}

func (r *commentRepository) CreateComment(ctx context.Context, comment *models.ResourceComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetComment(ctx context.Context, id string) (*models.ResourceComment, error) {
	var comment models.ResourceComment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetCommentsByIDs(ctx context.Context, ids []string) ([]models.ResourceComment, error) {
	var comments []models.ResourceComment
	if len(ids) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListComments(ctx context.Context, resourceID string, filter models.ApprovalFilter) ([]models.ResourceComment, error) {
	var comments []models.ResourceComment
	q := r.db.WithContext(ctx).Where("resource_id = ?", resourceID)
	err := applyApproval(q, filter).Order("created DESC").Find(&comments).Error
	return comments, err
}

// ApproveComments flips unapproved rows to approved. Already-approved rows
// are skipped, which keeps the first approval's timestamp and user intact.
func (r *commentRepository) ApproveComments(ctx context.Context, ids []string, userID string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.ResourceComment{}).
		Where("id IN ? AND approval = ?", ids, false).
		Updates(map[string]interface{}{
			"approval":         true,
			"approved":         at,
			"approval_user_id": userID,
		})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) DeleteComments(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.ResourceComment{})
	return res.RowsAffected, res.Error
}

// ResourceIDsForComments returns the distinct resources the given comments
// belong to, read before a destructive operation so summaries can be
// refreshed afterwards.
func (r *commentRepository) ResourceIDsForComments(ctx context.Context, ids []string) ([]string, error) {
	var resourceIDs []string
	if len(ids) == 0 {
		return resourceIDs, nil
	}
	err := r.db.WithContext(ctx).Model(&models.ResourceComment{}).
		Distinct("resource_id").
		Where("id IN ?", ids).
		Pluck("resource_id", &resourceIDs).Error
	return resourceIDs, err
}

func (r *commentRepository) CreateReply(ctx context.Context, reply *models.ResourceCommentReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *commentRepository) GetReply(ctx context.Context, id string) (*models.ResourceCommentReply, error) {
	var reply models.ResourceCommentReply
	err := r.db.WithContext(ctx).First(&reply, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, commentID string, filter models.ApprovalFilter) ([]models.ResourceCommentReply, error) {
	var replies []models.ResourceCommentReply
	q := r.db.WithContext(ctx).Where("resource_comment_id = ?", commentID)
	err := applyApproval(q, filter).Order("created ASC").Find(&replies).Error
	return replies, err
}

func (r *commentRepository) ApproveReply(ctx context.Context, id, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ResourceCommentReply{}).
		Where("id = ? AND approval = ?", id, false).
		Updates(map[string]interface{}{
			"approval":         true,
			"approved":         at,
			"approval_user_id": userID,
		}).Error
}

const upsertReactionSQL = `
INSERT INTO resource_comment_reactions
	(id, resource_comment_id, response_status, admin_liked, created, updated, updater_user_id)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (resource_comment_id) DO UPDATE SET
	response_status = EXCLUDED.response_status,
	admin_liked = EXCLUDED.admin_liked,
	updated = EXCLUDED.updated,
	updater_user_id = EXCLUDED.updater_user_id`

// UpsertReaction writes the single reaction row for a comment. Concurrent
// writers race on the unique index and last write wins.
func (r *commentRepository) UpsertReaction(ctx context.Context, reaction *models.ResourceCommentReaction) error {
	return r.db.WithContext(ctx).Exec(upsertReactionSQL,
		reaction.ID,
		reaction.ResourceCommentID,
		reaction.ResponseStatus,
		reaction.AdminLiked,
		reaction.Created,
		reaction.Updated,
		reaction.UpdaterUserID,
	).Error
}

func (r *commentRepository) GetReaction(ctx context.Context, commentID string) (*models.ResourceCommentReaction, error) {
	var reaction models.ResourceCommentReaction
	err := r.db.WithContext(ctx).First(&reaction, "resource_comment_id = ?", commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}
