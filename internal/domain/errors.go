package domain

import "errors"

var (
	// ErrNotConfigured means the relay credentials are missing or still placeholders
	ErrNotConfigured = errors.New("message relay is not configured")
	// ErrDispatchFailed wraps the first failing chunk's error
	ErrDispatchFailed = errors.New("dispatch failed")
)
