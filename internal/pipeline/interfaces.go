package pipeline

import (
	"context"
)

// ObjectStore fetches sources that live in cloud storage.
// This interface enables mocking and testing of storage functionality.
type ObjectStore interface {
	// FetchFromGCS downloads the object bytes for a gs:// URI. A missing object
	// must be reported with an error wrapping domain.ErrSourceNotFound.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}
