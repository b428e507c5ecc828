package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dataset-feedback/backend/internal/models"
)

// summaryRepository maintains the denormalized aggregates. Writes go
// through raw ON CONFLICT statements so concurrent submitters cannot
// create duplicate rows and refreshes stay a single round trip.
type summaryRepository struct {
	db *gorm.DB
}

const ensureCommentSummarySQL = `
INSERT INTO resource_comment_summaries
	(id, resource_id, comment_count, rating_comment_count, rating, created, updated)
VALUES (?, ?, 0, 0, 0, ?, ?)
ON CONFLICT (resource_id) DO NOTHING`

func (r *summaryRepository) EnsureCommentSummary(ctx context.Context, resourceID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Exec(ensureCommentSummarySQL, uuid.NewString(), resourceID, now, now).Error
}

const commentAggregateSQL = `
SELECT COUNT(*) AS comment_count,
	COUNT(rating) AS rating_comment_count,
	COALESCE(SUM(rating), 0) AS rating_total
FROM resource_comments
WHERE resource_id = ? AND approval = TRUE`

const upsertCommentSummarySQL = `
INSERT INTO resource_comment_summaries
	(id, resource_id, comment_count, rating_comment_count, rating, created, updated)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (resource_id) DO UPDATE SET
	comment_count = EXCLUDED.comment_count,
	rating_comment_count = EXCLUDED.rating_comment_count,
	rating = EXCLUDED.rating,
	updated = EXCLUDED.updated`

// RefreshCommentSummary recomputes the aggregate from approved comments.
// The rating is the average over rated comments only, 0 when none exist.
func (r *summaryRepository) RefreshCommentSummary(ctx context.Context, resourceID string) error {
	var agg struct {
		CommentCount       int
		RatingCommentCount int
		RatingTotal        float64
	}
	if err := r.db.WithContext(ctx).Raw(commentAggregateSQL, resourceID).Scan(&agg).Error; err != nil {
		return err
	}
	rating := 0.0
	if agg.RatingCommentCount > 0 {
		rating = agg.RatingTotal / float64(agg.RatingCommentCount)
	}
	now := time.Now()
	return r.db.WithContext(ctx).Exec(upsertCommentSummarySQL,
		uuid.NewString(), resourceID, agg.CommentCount, agg.RatingCommentCount, rating, now, now,
	).Error
}

func (r *summaryRepository) GetCommentSummary(ctx context.Context, resourceID string) (*models.ResourceCommentSummary, error) {
	var summary models.ResourceCommentSummary
	err := r.db.WithContext(ctx).First(&summary, "resource_id = ?", resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

const ensureUtilizationSummarySQL = `
INSERT INTO utilization_summaries
	(id, resource_id, utilization_count, created, updated)
VALUES (?, ?, 0, ?, ?)
ON CONFLICT (resource_id) DO NOTHING`

func (r *summaryRepository) EnsureUtilizationSummary(ctx context.Context, resourceID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Exec(ensureUtilizationSummarySQL, uuid.NewString(), resourceID, now, now).Error
}

const upsertUtilizationSummarySQL = `
INSERT INTO utilization_summaries
	(id, resource_id, utilization_count, created, updated)
VALUES (?, ?, (SELECT COUNT(*) FROM utilizations WHERE resource_id = ? AND approval = TRUE), ?, ?)
ON CONFLICT (resource_id) DO UPDATE SET
	utilization_count = EXCLUDED.utilization_count,
	updated = EXCLUDED.updated`

func (r *summaryRepository) RefreshUtilizationSummary(ctx context.Context, resourceID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Exec(upsertUtilizationSummarySQL,
		uuid.NewString(), resourceID, resourceID, now, now,
	).Error
}

func (r *summaryRepository) GetUtilizationSummary(ctx context.Context, resourceID string) (*models.UtilizationSummary, error) {
	var summary models.UtilizationSummary
	err := r.db.WithContext(ctx).First(&summary, "resource_id = ?", resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

const ensureIssueResolutionSummarySQL = `
INSERT INTO issue_resolution_summaries
	(id, utilization_id, issue_resolution_count, created, updated)
VALUES (?, ?, 0, ?, ?)
ON CONFLICT (utilization_id) DO NOTHING`

func (r *summaryRepository) EnsureIssueResolutionSummary(ctx context.Context, utilizationID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Exec(ensureIssueResolutionSummarySQL, uuid.NewString(), utilizationID, now, now).Error
}

const upsertIssueResolutionSummarySQL = `
INSERT INTO issue_resolution_summaries
	(id, utilization_id, issue_resolution_count, created, updated)
VALUES (?, ?, (SELECT COUNT(*) FROM issue_resolutions WHERE utilization_id = ?), ?, ?)
ON CONFLICT (utilization_id) DO UPDATE SET
	issue_resolution_count = EXCLUDED.issue_resolution_count,
	updated = EXCLUDED.updated`

func (r *summaryRepository) RefreshIssueResolutionSummary(ctx context.Context, utilizationID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Exec(upsertIssueResolutionSummarySQL,
		uuid.NewString(), utilizationID, utilizationID, now, now,
	).Error
}

func (r *summaryRepository) GetIssueResolutionSummary(ctx context.Context, utilizationID string) (*models.IssueResolutionSummary, error) {
	var summary models.IssueResolutionSummary
	err := r.db.WithContext(ctx).First(&summary, "utilization_id = ?", utilizationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

const incrementDownloadSQL = `
INSERT INTO download_summaries (id, resource_id, download_count, created, updated)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT (resource_id) DO UPDATE SET
	download_count = download_summaries.download_count + 1,
	updated = EXCLUDED.updated`

func (r *summaryRepository) IncrementDownloadCount(ctx context.Context, resourceID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Exec(incrementDownloadSQL, uuid.NewString(), resourceID, now, now).Error
}

func (r *summaryRepository) GetDownloadSummary(ctx context.Context, resourceID string) (*models.DownloadSummary, error) {
	var summary models.DownloadSummary
	err := r.db.WithContext(ctx).First(&summary, "resource_id = ?", resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

const incrementLikeSQL = `
INSERT INTO resource_like_summaries (id, resource_id, like_count, created, updated)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (resource_id) DO UPDATE SET
	like_count = GREATEST(0, resource_like_summaries.like_count + ?),
	updated = ?`

// IncrementLikeCount adjusts the like counter by delta, clamped at zero so
// an unlike delivered twice cannot drive the count negative.
func (r *summaryRepository) IncrementLikeCount(ctx context.Context, resourceID string, delta int) error {
	initial := delta
	if initial < 0 {
		initial = 0
	}
	now := time.Now()
	return r.db.WithContext(ctx).Exec(incrementLikeSQL,
		uuid.NewString(), resourceID, initial, now, now, delta, now,
	).Error
}

func (r *summaryRepository) GetLikeSummary(ctx context.Context, resourceID string) (*models.ResourceLikeSummary, error) {
	var summary models.ResourceLikeSummary
	err := r.db.WithContext(ctx).First(&summary, "resource_id = ?", resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
