package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrBadCredentials = errors.New("bad credentials")
	ErrInvalidExpiry  = errors.New("cookie expiry must be in the future")
)
