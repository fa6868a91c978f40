package widget

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownLanguage = errors.New("unknown language")
)
