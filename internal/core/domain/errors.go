// Package domain holds error sentinels and identifiers shared across the
// resolver core, independent of wire format or transport.
package domain

import "errors"

// Sentinel errors matching the ResolverError taxonomy: Io, Timeout,
// Parse(FormatError), EmptyQuery, RetriesLimitExceeded, Message.
var (
	ErrIO                   = errors.New("io error")
	ErrTimeout              = errors.New("operation timed out")
	ErrFormat               = errors.New("format error")
	ErrEmptyQuery           = errors.New("empty query")
	ErrRetriesLimitExceeded = errors.New("retries limit exceeded")
)
