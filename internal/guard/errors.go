package guard

import "errors"

var (
	ErrEmptyCart          = errors.New("empty cart")
	ErrRetryTooSoon       = errors.New("retry too soon")
	ErrTooManyItems       = errors.New("too many items")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrIllegalTransition  = errors.New("illegal transition of submission state")
)

// IsRejection reports whether err is one of the local validation failures
// that stop a submission before any network call.
func IsRejection(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrRetryTooSoon) ||
		errors.Is(err, ErrTooManyItems) ||
		errors.Is(err, ErrPayloadTooLarge) ||
		errors.Is(err, ErrSubmissionInFlight)
}
