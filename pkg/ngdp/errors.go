package ngdp

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCDN is returned when the cdns manifest yields no usable host
	ErrNoCDN = errors.New("no CDN available")

	// ErrNotCached is returned when reading a cache key that was never written
	ErrNotCached = errors.New("not in cache")
)

// ServerError is returned when the CDN or patch server answers with a
// non-200 status. It is not retried; the failing path is preserved for the
// caller.
type ServerError struct {
	Status int
	Path   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned HTTP %d for %q", e.Status, e.Path)
}
