package pager

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the root of every configuration error returned by a
// Pager. Use errors.Is to test for it.
var ErrInvalidArgument = errors.New("pager: invalid argument")

// Configuration errors. Each wraps ErrInvalidArgument.
var (
	ErrInvalidBatchSize     = fmt.Errorf("%w: batch size must be a positive integer", ErrInvalidArgument)
	ErrInvalidReclaimPolicy = fmt.Errorf("%w: unknown reclaim policy", ErrInvalidArgument)
	ErrInvalidMode          = fmt.Errorf("%w: unknown mode", ErrInvalidArgument)
)
