package service

import (
	"context"

	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/repository"
	"dataset-feedback/backend/pkg/cache"
	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
)

// SummaryService serves the aggregate read models and the increment-only
// counters. Reads go through redis when a cache client is configured; a
// cache outage degrades to database reads.
type SummaryService struct {
	store repository.Store
	cache *cache.Client
	log   *logger.Logger
}

func NewSummaryService(store repository.Store, cacheClient *cache.Client, log *logger.Logger) *SummaryService {
	return &SummaryService{store: store, cache: cacheClient, log: log}
}

func aggregatesCacheKey(resourceID string) string {
	return "aggregates:" + resourceID
}

// GetResourceAggregates returns the public counts for a resource. Missing
// summary rows read as zero; NotRated is true when no approved rated
// comment exists, which is distinct from an average rating of zero.
func (s *SummaryService) GetResourceAggregates(ctx context.Context, resourceID string) (*models.ResourceAggregates, error) {
	var cached models.ResourceAggregates
	if s.cache.GetJSON(ctx, aggregatesCacheKey(resourceID), &cached) {
		return &cached, nil
	}

	rc, err := s.store.Catalog().GetResourceContext(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, apperrors.NewNotFoundError("resource not found")
	}

	agg := &models.ResourceAggregates{ResourceID: resourceID, NotRated: true}

	commentSummary, err := s.store.Summaries().GetCommentSummary(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if commentSummary != nil {
		agg.CommentCount = commentSummary.CommentCount
		agg.Rating = commentSummary.Rating
		agg.NotRated = commentSummary.RatingCommentCount == 0
	}

	utilSummary, err := s.store.Summaries().GetUtilizationSummary(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if utilSummary != nil {
		agg.UtilizationCount = utilSummary.UtilizationCount
	}

	downloadSummary, err := s.store.Summaries().GetDownloadSummary(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if downloadSummary != nil {
		agg.DownloadCount = downloadSummary.DownloadCount
	}

	likeSummary, err := s.store.Summaries().GetLikeSummary(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if likeSummary != nil {
		agg.LikeCount = likeSummary.LikeCount
	}

	s.cache.SetJSON(ctx, aggregatesCacheKey(resourceID), agg)
	return agg, nil
}

// InvalidateAggregates drops the cached read model for the given resources.
// Called after any transaction that touched their summaries.
func (s *SummaryService) InvalidateAggregates(ctx context.Context, resourceIDs ...string) {
	keys := make([]string, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		keys = append(keys, aggregatesCacheKey(id))
	}
	s.cache.Delete(ctx, keys...)
}

// RecordDownload bumps the download counter for a resource.
func (s *SummaryService) RecordDownload(ctx context.Context, resourceID string) error {
	if err := s.store.Summaries().IncrementDownloadCount(ctx, resourceID); err != nil {
		return err
	}
	s.InvalidateAggregates(ctx, resourceID)
	return nil
}

// SetLike adjusts the like counter. liked=true adds one, liked=false takes
// one away, floored at zero.
func (s *SummaryService) SetLike(ctx context.Context, resourceID string, liked bool) error {
	delta := 1
	if !liked {
		delta = -1
	}
	if err := s.store.Summaries().IncrementLikeCount(ctx, resourceID, delta); err != nil {
		return err
	}
	s.InvalidateAggregates(ctx, resourceID)
	return nil
}
