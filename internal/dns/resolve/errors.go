package resolve

import (
	"errors"
	"fmt"

	"github.com/poyrazK/resolvercore/internal/core/domain"
)

// ResolverError wraps one of the domain sentinel errors with the
// resolution context (which server, which attempt) that produced it.
type ResolverError struct {
	Err    error
	Server string
}

func (e *ResolverError) Error() string {
	if e.Server == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (server %s)", e.Err.Error(), e.Server)
}

func (e *ResolverError) Unwrap() error { return e.Err }

func newResolverError(err error, server string) *ResolverError {
	return &ResolverError{Err: err, Server: server}
}

// IsRetriesLimitExceeded reports whether err is (or wraps) ErrRetriesLimitExceeded.
func IsRetriesLimitExceeded(err error) bool {
	return errors.Is(err, domain.ErrRetriesLimitExceeded)
}
