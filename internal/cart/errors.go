package cart

import "errors"

var (
	ErrQuantityLimitExceeded = errors.New("quantity limit per item reached")
	ErrInvalidItemID         = errors.New("invalid item id")
)
