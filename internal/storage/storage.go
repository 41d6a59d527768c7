package storage

import (
	"context"
	"io"
)

// FileStorage persists uploaded post images. Posts only keep the key
// returned by Save; how and where the bytes live is this package's
// concern.
type FileStorage interface {
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
}
