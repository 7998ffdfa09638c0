package roon

import "errors"

var (
	ErrNotConnected                  = errors.New("roon: not connected")
	ErrConnectionFailed              = errors.New("roon: connection failed")
	ErrConnectionClosed              = errors.New("roon: connection closed")
	ErrTimeout                       = errors.New("roon: request timed out")
	ErrRegistrationFailed            = errors.New("roon: registration failed")
	ErrMaxReconnectAttemptsExceeded  = errors.New("roon: max reconnect attempts exceeded")
)
