package domain

import "errors"

// ErrEmptyTagKey is returned where an operation requires a non-empty
// canonical tag key (e.g. selecting by tag) but TagBits canonicalized to
// nothing.
var ErrEmptyTagKey = errors.New("domain: tag set canonicalizes to empty key")

// ErrUnknownOpKind is returned when an OpLog line carries a kind this build
// does not recognize.
var ErrUnknownOpKind = errors.New("domain: unknown op kind")

// ErrInvalidVerificationStatus is returned when a raw integer or string does
// not map to one of the five known grades.
var ErrInvalidVerificationStatus = errors.New("domain: invalid verification status")
