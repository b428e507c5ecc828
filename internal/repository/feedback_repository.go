package repository

import (
	"context"

	"gorm.io/gorm"

	"dataset-feedback/backend/internal/models"
)

// feedbackRepository projects each feedback kind into the common listing
// row. The joins drop rows whose resource or dataset is no longer active,
// and the optional org filter keeps unauthorized rows from ever leaving
// the database.
type feedbackRepository struct {
	db *gorm.DB
}

const resourceCommentItemsSQL = `
SELECT ? AS type,
	rc.id AS comment_id,
	NULL AS utilization_id,
	res.id AS resource_id,
	res.name AS resource_name,
	ds.name AS package_name,
	ds.title AS package_title,
	ds.owner_org AS owner_org,
	org.name AS group_name,
	rc.content AS content,
	rc.created AS created,
	rc.approval AS is_approved,
	rc.approved AS approved,
	rc.approval_user_id AS approval_user_id
FROM resource_comments rc
JOIN resources res ON res.id = rc.resource_id
JOIN datasets ds ON ds.id = res.dataset_id
JOIN organizations org ON org.id = ds.owner_org
WHERE res.state = 'active' AND ds.state = 'active'`

func (r *feedbackRepository) ListResourceCommentItems(ctx context.Context, scope FeedbackScope) ([]models.FeedbackItem, error) {
	return r.scanItems(ctx, resourceCommentItemsSQL, models.FeedbackResourceComment, scope)
}

const utilizationItemsSQL = `
SELECT ? AS type,
	NULL AS comment_id,
	u.id AS utilization_id,
	res.id AS resource_id,
	res.name AS resource_name,
	ds.name AS package_name,
	ds.title AS package_title,
	ds.owner_org AS owner_org,
	org.name AS group_name,
	u.title AS content,
	u.created AS created,
	u.approval AS is_approved,
	u.approved AS approved,
	u.approval_user_id AS approval_user_id
FROM utilizations u
JOIN resources res ON res.id = u.resource_id
JOIN datasets ds ON ds.id = res.dataset_id
JOIN organizations org ON org.id = ds.owner_org
WHERE res.state = 'active' AND ds.state = 'active'`

func (r *feedbackRepository) ListUtilizationItems(ctx context.Context, scope FeedbackScope) ([]models.FeedbackItem, error) {
	return r.scanItems(ctx, utilizationItemsSQL, models.FeedbackUtilization, scope)
}

const utilizationCommentItemsSQL = `
SELECT ? AS type,
	uc.id AS comment_id,
	uc.utilization_id AS utilization_id,
	res.id AS resource_id,
	res.name AS resource_name,
	ds.name AS package_name,
	ds.title AS package_title,
	ds.owner_org AS owner_org,
	org.name AS group_name,
	uc.content AS content,
	uc.created AS created,
	uc.approval AS is_approved,
	uc.approved AS approved,
	uc.approval_user_id AS approval_user_id
FROM utilization_comments uc
JOIN utilizations u ON u.id = uc.utilization_id
JOIN resources res ON res.id = u.resource_id
JOIN datasets ds ON ds.id = res.dataset_id
JOIN organizations org ON org.id = ds.owner_org
WHERE res.state = 'active' AND ds.state = 'active'`

func (r *feedbackRepository) ListUtilizationCommentItems(ctx context.Context, scope FeedbackScope) ([]models.FeedbackItem, error) {
	return r.scanItems(ctx, utilizationCommentItemsSQL, models.FeedbackUtilizationComment, scope)
}

func (r *feedbackRepository) scanItems(ctx context.Context, query string, kind models.FeedbackType, scope FeedbackScope) ([]models.FeedbackItem, error) {
	args := []interface{}{string(kind)}
	if scope.Orgs != nil {
		query += " AND ds.owner_org IN ?"
		args = append(args, scope.Orgs)
	}
	var items []models.FeedbackItem
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&items).Error
	return items, err
}
