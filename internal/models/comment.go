package models

import (
	"time"
)

// ResourceComment is user feedback attached directly to a resource.
// Rows are created unapproved; approval is a one-way transition.
type ResourceComment struct {
	ID                    string          `json:"id" gorm:"type:text;primaryKey"`
	ResourceID            string          `json:"resource_id" gorm:"type:text;not null;index"`
	Category              CommentCategory `json:"category" gorm:"type:text;not null"`
	Content               string          `json:"content" gorm:"type:text"`
	Rating                *int            `json:"rating"`
	AttachedImageFilename *string         `json:"attached_image_filename"`
	Created               time.Time       `json:"created"`
	Approval              bool            `json:"approval" gorm:"default:false"`
	Approved              *time.Time      `json:"approved"`
	ApprovalUserID        *string         `json:"approval_user_id" gorm:"type:text"`
}

// ResourceCommentReply is an administrator reply to a resource comment.
// It cannot be approved while its parent comment is unapproved.
type ResourceCommentReply struct {
	ID                    string     `json:"id" gorm:"type:text;primaryKey"`
	ResourceCommentID     string     `json:"resource_comment_id" gorm:"type:text;not null;index"`
	Content               string     `json:"content" gorm:"type:text"`
	CreatorUserID         string     `json:"creator_user_id" gorm:"type:text"`
	AttachedImageFilename *string    `json:"attached_image_filename"`
	Created               time.Time  `json:"created"`
	Approval              bool       `json:"approval" gorm:"default:false"`
	Approved              *time.Time `json:"approved"`
	ApprovalUserID        *string    `json:"approval_user_id" gorm:"type:text"`

	ResourceComment *ResourceComment `json:"-" gorm:"foreignKey:ResourceCommentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// ResourceCommentReaction tracks the moderation response state for one
// comment. Strictly 1:1 with the comment, enforced by the unique index and
// written with an upsert.
type ResourceCommentReaction struct {
	ID                string         `json:"id" gorm:"type:text;primaryKey"`
	ResourceCommentID string         `json:"resource_comment_id" gorm:"type:text;not null;uniqueIndex"`
	ResponseStatus    ResponseStatus `json:"response_status" gorm:"type:text;not null"`
	AdminLiked        bool           `json:"admin_liked" gorm:"default:false"`
	Created           time.Time      `json:"created"`
	Updated           *time.Time     `json:"updated"`
	UpdaterUserID     *string        `json:"updater_user_id" gorm:"type:text"`

	ResourceComment *ResourceComment `json:"-" gorm:"foreignKey:ResourceCommentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// ResourceCommentSummary is the denormalized per-resource aggregate over
// approved comments. One row per resource, created idempotently on first
// submission and refreshed by full recompute.
type ResourceCommentSummary struct {
	ID                 string    `json:"id" gorm:"type:text;primaryKey"`
	ResourceID         string    `json:"resource_id" gorm:"type:text;not null;uniqueIndex"`
	CommentCount       int       `json:"comment" gorm:"column:comment_count"`
	RatingCommentCount int       `json:"rating_comment" gorm:"column:rating_comment_count"`
	Rating             float64   `json:"rating"`
	Created            time.Time `json:"created"`
	Updated            time.Time `json:"updated"`
}
