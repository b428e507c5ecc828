package models

import (
	"time"
)

// FeedbackItem is the common row shape the three feedback kinds project
// into for the unified admin listing.
type FeedbackItem struct {
	Type           FeedbackType `json:"feedback_type"`
	CommentID      *string      `json:"comment_id"`
	UtilizationID  *string      `json:"utilization_id"`
	ResourceID     string       `json:"resource_id"`
	ResourceName   string       `json:"resource_name"`
	PackageName    string       `json:"package_name"`
	PackageTitle   string       `json:"package_title"`
	OwnerOrg       string       `json:"owner_org"`
	GroupName      string       `json:"group_name"`
	Content        string       `json:"content"`
	Created        time.Time    `json:"created"`
	IsApproved     bool         `json:"is_approved"`
	Approved       *time.Time   `json:"approved"`
	ApprovalUserID *string      `json:"approval_user_id"`
}

// TargetID returns the id moderation operations act on for this row.
func (f FeedbackItem) TargetID() string {
	switch f.Type {
	case FeedbackUtilization:
		if f.UtilizationID != nil {
			return *f.UtilizationID
		}
	default:
		if f.CommentID != nil {
			return *f.CommentID
		}
	}
	return ""
}
