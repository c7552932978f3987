package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no blob is stored under key.
var ErrNotFound = errors.New("blob not found")

// BlobStore keeps opaque byte blobs under slash-separated keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// NopStore stores nothing; every Get misses.
type NopStore struct{}

func (NopStore) Put(_ context.Context, key string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return key, err
}

func (NopStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, ErrNotFound
}
