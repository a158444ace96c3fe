package container

import "errors"

// Common errors.
var (
	ErrInvalidMagic = errors.New("invalid magic bytes")
	ErrTruncated    = errors.New("file truncated")
	ErrSeedTooLarge = errors.New("declared seed size exceeds limit")
	ErrSlotOverflow = errors.New("value does not fit its fixed-width slot")
)
