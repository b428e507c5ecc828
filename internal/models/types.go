package models

// CommentCategory classifies a comment. The same categories apply to
// resource comments and utilization comments; there is one canonical enum.
type CommentCategory string

const (
	CategoryRequest   CommentCategory = "Request"
	CategoryQuestion  CommentCategory = "Question"
	CategoryAdvertise CommentCategory = "Advertise"
	CategoryThank     CommentCategory = "Thank"
)

// ValidCommentCategory reports whether the given value is a known category.
func ValidCommentCategory(v CommentCategory) bool {
	switch v {
	case CategoryRequest, CategoryQuestion, CategoryAdvertise, CategoryThank:
		return true
	}
	return false
}

// ResponseStatus is the moderation response state tracked per resource comment.
type ResponseStatus string

const (
	StatusNone       ResponseStatus = "StatusNone"
	StatusNotStarted ResponseStatus = "NotStarted"
	StatusInProgress ResponseStatus = "InProgress"
	StatusCompleted  ResponseStatus = "Completed"
	StatusRejected   ResponseStatus = "Rejected"
)

// ValidResponseStatus reports whether the given value is a known status.
// Unknown values are rejected before any mutation.
func ValidResponseStatus(v ResponseStatus) bool {
	switch v {
	case StatusNone, StatusNotStarted, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// MoralCheckAction tags each append-only moral check log row.
type MoralCheckAction string

const (
	ActionPrevious           MoralCheckAction = "Previous"
	ActionCheckCompleted     MoralCheckAction = "CheckCompleted"
	ActionInputSelected      MoralCheckAction = "InputSelected"
	ActionSuggestionSelected MoralCheckAction = "SuggestionSelected"
	ActionClosed             MoralCheckAction = "Closed"
)

// ValidMoralCheckAction reports whether the given value is a known action.
func ValidMoralCheckAction(v MoralCheckAction) bool {
	switch v {
	case ActionPrevious, ActionCheckCompleted, ActionInputSelected, ActionSuggestionSelected, ActionClosed:
		return true
	}
	return false
}

// ApprovalFilter narrows a listing by approval state.
type ApprovalFilter int

const (
	// ApprovalAll imposes no approval restriction.
	ApprovalAll ApprovalFilter = iota
	// OnlyApproved returns approved rows only.
	OnlyApproved
	// OnlyUnapproved returns unapproved rows only.
	OnlyUnapproved
)

// FeedbackType identifies which of the three feedback kinds a projected
// union row came from. The kinds cannot collide, so the union needs no
// de-duplication.
type FeedbackType string

const (
	FeedbackResourceComment    FeedbackType = "resource comment"
	FeedbackUtilization        FeedbackType = "utilization request"
	FeedbackUtilizationComment FeedbackType = "utilization comment"
)
