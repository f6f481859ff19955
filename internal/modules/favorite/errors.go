package favorite

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrPersist        = errors.New("persist_failed")
)
