package domain

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrParameterLimit      = errors.New("parameter limit reached")
	ErrEmptyGroupName      = errors.New("group name is empty")
	ErrTemplateNotSelected = errors.New("template not selected")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrMissingDates        = errors.New("date range not set")
	ErrNoUsername          = errors.New("username not available")
	ErrApproverRequired    = errors.New("approver required")
	ErrSameApprover        = errors.New("approver and reviewer are the same")
	ErrReviewerRequired    = errors.New("reviewer required")
	ErrScheduleFields      = errors.New("schedule fields missing")
	ErrDuplicateSchedule   = errors.New("template already scheduled")
	ErrUnknownFrequency    = errors.New("unknown frequency")
	ErrUnknownExportType   = errors.New("unknown export type")
	ErrUnknownRange        = errors.New("unknown predefined range")
	ErrSinkUnavailable     = errors.New("report sink unavailable")
)

var preconditions = []error{
	ErrValidation,
	ErrParameterLimit,
	ErrEmptyGroupName,
	ErrTemplateNotSelected,
	ErrInvalidDateRange,
	ErrMissingDates,
	ErrNoUsername,
	ErrApproverRequired,
	ErrSameApprover,
	ErrReviewerRequired,
	ErrScheduleFields,
	ErrDuplicateSchedule,
	ErrUnknownFrequency,
	ErrUnknownExportType,
	ErrUnknownRange,
	ErrSinkUnavailable,
}

// IsPrecondition reports whether err was raised by a client-side check,
// before any request reached the backend.
func IsPrecondition(err error) bool {
	return Precondition(err) != nil
}

// Precondition returns the sentinel of the failed check behind err, if any.
func Precondition(err error) error {
	for _, target := range preconditions {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}
