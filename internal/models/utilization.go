package models

import (
	"time"
)

// Utilization is a user-submitted record describing practical reuse of a
// resource. Moderated like a comment; deleting one cascades to its comments
// and issue resolutions.
type Utilization struct {
	ID             string     `json:"id" gorm:"type:text;primaryKey"`
	ResourceID     string     `json:"resource_id" gorm:"type:text;not null;index"`
	Title          string     `json:"title" gorm:"type:text"`
	URL            string     `json:"url" gorm:"type:text"`
	Description    string     `json:"description" gorm:"type:text"`
	CommentCount   int        `json:"comment" gorm:"column:comment_count"`
	Created        time.Time  `json:"created"`
	Approval       bool       `json:"approval" gorm:"default:false"`
	Approved       *time.Time `json:"approved"`
	ApprovalUserID *string    `json:"approval_user_id" gorm:"type:text"`
	Updated        *time.Time `json:"updated"`
}

// UtilizationComment is feedback attached to a utilization record
type UtilizationComment struct {
	ID                    string          `json:"id" gorm:"type:text;primaryKey"`
	UtilizationID         string          `json:"utilization_id" gorm:"type:text;not null;index"`
	Category              CommentCategory `json:"category" gorm:"type:text;not null"`
	Content               string          `json:"content" gorm:"type:text"`
	AttachedImageFilename *string         `json:"attached_image_filename"`
	Created               time.Time       `json:"created"`
	Approval              bool            `json:"approval" gorm:"default:false"`
	Approved              *time.Time      `json:"approved"`
	ApprovalUserID        *string         `json:"approval_user_id" gorm:"type:text"`

	Utilization *Utilization `json:"-" gorm:"foreignKey:UtilizationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// IssueResolution records that a concern raised through a utilization was
// addressed by the data provider.
type IssueResolution struct {
	ID            string    `json:"id" gorm:"type:text;primaryKey"`
	UtilizationID string    `json:"utilization_id" gorm:"type:text;not null;index"`
	Description   string    `json:"description" gorm:"type:text"`
	Created       time.Time `json:"created"`
	CreatorUserID string    `json:"creator_user_id" gorm:"type:text"`

	Utilization *Utilization `json:"-" gorm:"foreignKey:UtilizationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// UtilizationSummary is the denormalized per-resource count of approved
// utilizations.
type UtilizationSummary struct {
	ID               string    `json:"id" gorm:"type:text;primaryKey"`
	ResourceID       string    `json:"resource_id" gorm:"type:text;not null;uniqueIndex"`
	UtilizationCount int       `json:"utilization" gorm:"column:utilization_count"`
	Created          time.Time `json:"created"`
	Updated          time.Time `json:"updated"`
}

// IssueResolutionSummary is the denormalized per-utilization count of issue
// resolutions.
type IssueResolutionSummary struct {
	ID                   string    `json:"id" gorm:"type:text;primaryKey"`
	UtilizationID        string    `json:"utilization_id" gorm:"type:text;not null;uniqueIndex"`
	IssueResolutionCount int       `json:"issue_resolution" gorm:"column:issue_resolution_count"`
	Created              time.Time `json:"created"`
	Updated              time.Time `json:"updated"`

	Utilization *Utilization `json:"-" gorm:"foreignKey:UtilizationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
