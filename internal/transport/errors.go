package transport

import (
	"errors"
	"fmt"
)

var (
	ErrNoEndpoint  = errors.New("order endpoint is not configured")
	ErrEmptyBody   = errors.New("empty order payload")
	ErrBreakerOpen = errors.New("order endpoint temporarily unavailable")
)

// DeliveryError is returned when the endpoint answered but did not confirm
// the order, either with a non-2xx status or without the success marker.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("order not accepted: status %d", e.Status)
	}
	return fmt.Sprintf("order not accepted: status %d: %s", e.Status, e.Body)
}
