package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dataset-feedback/backend/internal/models"
)

type utilizationRepository struct {
	db *gorm.DB
}

func (r *utilizationRepository) CreateUtilization(ctx context.Context, util *models.Utilization) error {
	return r.db.WithContext(ctx).Create(util).Error
}

func (r *utilizationRepository) GetUtilization(ctx context.Context, id string) (*models.Utilization, error) {
	var util models.Utilization
	err := r.db.WithContext(ctx).First(&util, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &util, nil
}

func (r *utilizationRepository) GetUtilizationsByIDs(ctx context.Context, ids []string) ([]models.Utilization, error) {
	var utils []models.Utilization
	if len(ids) == 0 {
		return utils, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&utils).Error
	return utils, err
}

func (r *utilizationRepository) ListUtilizations(ctx context.Context, resourceID, keyword string, filter models.ApprovalFilter) ([]models.Utilization, error) {
	var utils []models.Utilization
	q := r.db.WithContext(ctx).Model(&models.Utilization{})
	if resourceID != "" {
		q = q.Where("resource_id = ?", resourceID)
	}
	if keyword != "" {
		pattern := "%" + keyword + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	err := applyApproval(q, filter).Order("created DESC").Find(&utils).Error
	return utils, err
}

func (r *utilizationRepository) UpdateUtilization(ctx context.Context, id, title, url, description string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Utilization{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       title,
			"url":         url,
			"description": description,
			"updated":     at,
		}).Error
}

func (r *utilizationRepository) ApproveUtilizations(ctx context.Context, ids []string, userID string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Utilization{}).
		Where("id IN ? AND approval = ?", ids, false).
		Updates(map[string]interface{}{
			"approval":         true,
			"approved":         at,
			"approval_user_id": userID,
		})
	return res.RowsAffected, res.Error
}

func (r *utilizationRepository) DeleteUtilizations(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Utilization{})
	return res.RowsAffected, res.Error
}

func (r *utilizationRepository) ResourceIDsForUtilizations(ctx context.Context, ids []string) ([]string, error) {
	var resourceIDs []string
	if len(ids) == 0 {
		return resourceIDs, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Utilization{}).
		Distinct("resource_id").
		Where("id IN ?", ids).
		Pluck("resource_id", &resourceIDs).Error
	return resourceIDs, err
}

func (r *utilizationRepository) CreateUtilizationComment(ctx context.Context, comment *models.UtilizationComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *utilizationRepository) GetUtilizationComment(ctx context.Context, id string) (*models.UtilizationComment, error) {
	var comment models.UtilizationComment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *utilizationRepository) GetUtilizationCommentsByIDs(ctx context.Context, ids []string) ([]models.UtilizationComment, error) {
	var comments []models.UtilizationComment
	if len(ids) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error
	return comments, err
}

func (r *utilizationRepository) ListUtilizationComments(ctx context.Context, utilizationID string, filter models.ApprovalFilter) ([]models.UtilizationComment, error) {
	var comments []models.UtilizationComment
	q := r.db.WithContext(ctx).Where("utilization_id = ?", utilizationID)
	err := applyApproval(q, filter).Order("created DESC").Find(&comments).Error
	return comments, err
}

func (r *utilizationRepository) ApproveUtilizationComments(ctx context.Context, ids []string, userID string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.UtilizationComment{}).
		Where("id IN ? AND approval = ?", ids, false).
		Updates(map[string]interface{}{
			"approval":         true,
			"approved":         at,
			"approval_user_id": userID,
		})
	return res.RowsAffected, res.Error
}

func (r *utilizationRepository) DeleteUtilizationComments(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.UtilizationComment{})
	return res.RowsAffected, res.Error
}

func (r *utilizationRepository) UtilizationIDsForComments(ctx context.Context, ids []string) ([]string, error) {
	var utilizationIDs []string
	if len(ids) == 0 {
		return utilizationIDs, nil
	}
	err := r.db.WithContext(ctx).Model(&models.UtilizationComment{}).
		Distinct("utilization_id").
		Where("id IN ?", ids).
		Pluck("utilization_id", &utilizationIDs).Error
	return utilizationIDs, err
}

const refreshUtilizationCommentCountSQL = `
UPDATE utilizations SET comment_count = (
	SELECT COUNT(*) FROM utilization_comments
	WHERE utilization_id = ? AND approval = TRUE
) WHERE id = ?`

// RefreshUtilizationCommentCount recomputes the denormalized approved
// comment count on the utilization row.
func (r *utilizationRepository) RefreshUtilizationCommentCount(ctx context.Context, utilizationID string) error {
	return r.db.WithContext(ctx).Exec(refreshUtilizationCommentCountSQL, utilizationID, utilizationID).Error
}

func (r *utilizationRepository) CreateIssueResolution(ctx context.Context, res *models.IssueResolution) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *utilizationRepository) ListIssueResolutions(ctx context.Context, utilizationID string) ([]models.IssueResolution, error) {
	var resolutions []models.IssueResolution
	err := r.db.WithContext(ctx).
		Where("utilization_id = ?", utilizationID).
		Order("created DESC").
		Find(&resolutions).Error
	return resolutions, err
}
