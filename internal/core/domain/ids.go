package domain

import "github.com/google/uuid"

// NewRequestID returns a fresh identifier for one resolution. The engine
// attaches it to the log line that ends that resolution.
func NewRequestID() string {
	return uuid.NewString()
}
