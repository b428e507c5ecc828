package models

import (
	"time"
)

// MoralCheckParentKind identifies which comment table a log row belongs to.
type MoralCheckParentKind string

const (
	MoralCheckResourceComment    MoralCheckParentKind = "resource_comment"
	MoralCheckUtilizationComment MoralCheckParentKind = "utilization_comment"
)

// MoralCheckLog is an append-only audit row for the pre-submission
// suggestion loop. Rows are never mutated or deleted.
type MoralCheckLog struct {
	ID               string               `json:"id" gorm:"type:text;primaryKey"`
	ParentID         string               `json:"parent_id" gorm:"type:text;not null;index"`
	ParentKind       MoralCheckParentKind `json:"parent_kind" gorm:"type:text;not null"`
	Action           MoralCheckAction     `json:"action" gorm:"type:text;not null"`
	InputComment     string               `json:"input_comment" gorm:"type:text"`
	SuggestedComment string               `json:"suggested_comment" gorm:"type:text"`
	OutputComment    string               `json:"output_comment" gorm:"type:text"`
	Timestamp        time.Time            `json:"timestamp"`
}
