package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by catalog providers for unknown identifiers.
	ErrNotFound = errors.New("not found")

	// ErrMalformedMetadata matches every *MalformedMetadataError via errors.Is.
	ErrMalformedMetadata = errors.New("malformed metadata")

	// ErrProviderTimeout marks a matching provider call that ran out of time.
	ErrProviderTimeout = errors.New("matching provider timeout")

	// ErrInvalidContentType is returned for content types other than track/album.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidQuery is returned for blank search queries.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownProvider is returned when no catalog provider is registered under a name.
	ErrUnknownProvider = errors.New("unknown provider")
)

// MalformedMetadataError is returned when a raw catalog record lacks fields
// required to build TrackMetadata.
type MalformedMetadataError struct {
	Missing []string
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("malformed metadata: missing %s", strings.Join(e.Missing, ", "))
}

func (e *MalformedMetadataError) Is(target error) bool {
	return target == ErrMalformedMetadata
}

// ProviderTransportError wraps a failed call to the matching provider.
// StatusCode is zero when no HTTP response was received.
type ProviderTransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderTransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderTransportError) Unwrap() error { return e.Err }
