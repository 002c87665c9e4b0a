package model

import "errors"

// Validation errors returned by NewTask and NewDailyLog.
var (
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidUrgency    = errors.New("invalid urgency")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrAnchorRequired    = errors.New("either specificDate or monthReference is required")
	ErrAnchorConflict    = errors.New("specificDate and monthReference are mutually exclusive")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth      = errors.New("monthReference must be between 0 and 11")
	ErrContentRequired   = errors.New("content is required")
)

// IsValidation reports whether err is one of the validation errors above.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrTitleRequired, ErrInvalidCategory, ErrInvalidUrgency, ErrInvalidRecurrence,
		ErrAnchorRequired, ErrAnchorConflict, ErrInvalidDate, ErrInvalidMonth, ErrContentRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
