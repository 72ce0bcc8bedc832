package mllp

import "errors"

var (
	ErrHostRequired    = errors.New("mllp: host required")
	ErrTimeoutRequired = errors.New("mllp: timeout must be positive")
	ErrConnect         = errors.New("mllp: connect failed")
	ErrWrite           = errors.New("mllp: write failed")
	ErrTimedOut        = errors.New("mllp: read timed out")
	ErrInvalidData     = errors.New("mllp: response is not valid utf-8")
)
