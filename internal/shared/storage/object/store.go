package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves and retrieves uploaded files (transcripts, screenshots, documents).
type ObjectStore interface {
	// Save stores r under a fresh key in the user's namespace and sniffs its content type.
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	// SaveWithKey stores r under an exact key, overwriting any existing object.
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// ReadAll opens key and reads it fully, failing once more than limit bytes are read.
func ReadAll(ctx context.Context, store ObjectStore, key string, limit int64) ([]byte, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// ErrTooLarge is returned by ReadAll when the object exceeds the caller's limit.
var ErrTooLarge = errors.New("object exceeds size limit")

// MetadataUserID is the object metadata key carrying the uploader's user id.
const MetadataUserID = "user-id"
