package models

import (
	"time"
)

// DownloadSummary counts resource downloads. Unlike the comment and
// utilization summaries there are no source rows to recompute from, so the
// counter is increment-only.
type DownloadSummary struct {
	ID            string    `json:"id" gorm:"type:text;primaryKey"`
	ResourceID    string    `json:"resource_id" gorm:"type:text;not null;uniqueIndex"`
	DownloadCount int       `json:"download" gorm:"column:download_count"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

// ResourceLikeSummary counts likes on a resource. Increment/decrement only.
type ResourceLikeSummary struct {
	ID         string    `json:"id" gorm:"type:text;primaryKey"`
	ResourceID string    `json:"resource_id" gorm:"type:text;not null;uniqueIndex"`
	LikeCount  int       `json:"like" gorm:"column:like_count"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}

// ResourceAggregates is the read model served to end users browsing counts.
// NotRated distinguishes "no rated comments yet" from a true average of 0.
type ResourceAggregates struct {
	ResourceID       string  `json:"resource_id"`
	CommentCount     int     `json:"comment_count"`
	Rating           float64 `json:"rating"`
	NotRated         bool    `json:"not_rated"`
	UtilizationCount int     `json:"utilization_count"`
	DownloadCount    int     `json:"download_count"`
	LikeCount        int     `json:"like_count"`
}
