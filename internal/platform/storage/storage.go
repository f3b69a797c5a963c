// Package storage stores uploaded structure files behind a small S3-like
// interface with filesystem and GCS backends.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	errs "github.com/yungbote/osteobridge-backend/internal/pkg/errors"
)

const (
	DriverFilesystem = "fs"
	DriverGCS        = "gcs"
)

var ErrNotFound = fmt.Errorf("blob %w", errs.ErrNotFound)

type PutOptions struct {
	ContentType string
}

type Info struct {
	Key         string `json:"key"`
	Size        int64  `json:"size_bytes"`
	ContentType string `json:"content_type,omitempty"`
	ETag        string `json:"etag,omitempty"`
	URL         string `json:"url,omitempty"`
}

// BlobStore is implemented by every backend. Put replaces an existing key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
	Driver() string
}

// CleanKey rejects keys that could escape the store root.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if k == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(k, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	for _, seg := range strings.Split(k, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid key traversal %q", key)
		}
	}
	return path.Clean(k), nil
}
