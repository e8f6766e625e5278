package service

import "errors"

var (
	// ErrNotFound: no such file or token.
	ErrNotFound = errors.New("file not found")
	// ErrNotFoundOrDenied is returned by protected access for both a missing
	// file and a missing permission, so callers cannot probe for existence.
	ErrNotFoundOrDenied = errors.New("file not found or access denied")
	// ErrLinkExpired: the public token is valid but past its expiry.
	ErrLinkExpired = errors.New("this link has expired")

	ErrForbidden       = errors.New("you do not have permission to perform this action")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage wraps object storage failures.
	ErrStorage = errors.New("storage unavailable")
)
