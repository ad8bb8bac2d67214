package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrNoToken         = errors.New("user has no access token")
	ErrStateMismatch   = errors.New("oauth state mismatch")
	ErrCallbackTimeout = errors.New("timed out waiting for oauth callback")
	ErrSyncFailed      = errors.New("all daily post syncs failed")
	ErrInvalidTimezone = errors.New("invalid timezone")
)
