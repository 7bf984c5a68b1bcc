package storage

import "errors"

var (
	ErrEmptyPrefix        = errors.New("prefix cannot be empty")
	ErrPrefixTooLong      = errors.New("prefix must be 3 characters or less")
	ErrUnknownSetting     = errors.New("unknown setting")
	ErrAlreadyWhitelisted = errors.New("user is already whitelisted")
	ErrNotWhitelisted     = errors.New("user is not whitelisted")
	ErrNoAutoPurge        = errors.New("auto purge is not enabled in this channel")
	ErrNoCustomCommand    = errors.New("custom command not found")
)
