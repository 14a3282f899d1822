// Package storage provides object storage for source videos, transcripts and
// rendered clips. It defines the Storage interface consumed by the stage
// handlers and an S3 implementation.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage defines the object store operations the pipeline stages need.
// Keys are opaque object references stored on projects, clips and job
// payloads.
type Storage interface {
	// Get returns a reader for the object at key.
	// The caller is responsible for closing the returned ReadCloser.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put writes the object at key, replacing any existing content.
	Put(ctx context.Context, key string, data io.Reader, contentType string) error

	// Copy duplicates an object within the store and returns its size.
	Copy(ctx context.Context, srcKey, dstKey string) (int64, error)

	// PresignGet returns a time-limited URL for downloading the object.
	// Stage collaborators (transcription backends, transcoders) fetch their
	// inputs through these URLs instead of holding store credentials.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes the object at key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
