package admission

import "github.com/pkg/errors"

var (
	// ErrJobNotFound is returned when the referenced job post does not exist.
	ErrJobNotFound = errors.New("job post not found")
	// ErrApplicationNotFound is returned when the referenced application does not exist.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrJobNotActive is returned when submitting to an inactive or filled post.
	ErrJobNotActive = errors.New("job post is not accepting applications")
	// ErrCapacityExceeded is returned when the applicant cap is already reached.
	ErrCapacityExceeded = errors.New("job post has reached its applicant cap")
	// ErrInvalidTransition is returned when the state machine rejects a status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPermissionDenied is returned when the caller's role does not allow the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDuplicateApplication is returned when the applicant already applied to the post.
	ErrDuplicateApplication = errors.New("already applied to this job post")
)

// ValidationError reports a submission that is missing required documents or
// screening answers. The reason is safe to show to the applicant.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
