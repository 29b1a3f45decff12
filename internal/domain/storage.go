package domain

import (
	"context"
	"io"
)

// ArchiveStore streams archives to and from a storage backend without
// buffering them in full.
type ArchiveStore interface {
	// Upload consumes body until EOF. A read error aborts the upload.
	Upload(ctx context.Context, key string, body io.Reader) error
	// Download returns ErrBackupNotFound when nothing is stored under key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Name() string
}
