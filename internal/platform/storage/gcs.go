package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

const (
	ModeGCS         = "gcs"
	ModeGCSEmulator = "gcs_emulator"
)

type GCSConfig struct {
	Bucket string
	// Mode is "gcs" or "gcs_emulator". Empty picks the emulator when
	// EmulatorHost is set.
	Mode         string
	EmulatorHost string
	// Credentials is a service account JSON document or a path to one.
	Credentials string
	// PublicBaseURL overrides the URL reported in Info.
	PublicBaseURL string
}

// Resolve fills defaults and validates the mode/emulator pairing.
func (c GCSConfig) Resolve() (GCSConfig, error) {
	c.Bucket = strings.TrimSpace(c.Bucket)
	c.EmulatorHost = strings.TrimRight(strings.TrimSpace(c.EmulatorHost), "/")
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Bucket == "" {
		return c, errors.New("gcs bucket name is required")
	}
	switch c.Mode {
	case "":
		c.Mode = ModeGCS
		if c.EmulatorHost != "" {
			c.Mode = ModeGCSEmulator
		}
	case ModeGCS, ModeGCSEmulator:
	default:
		return c, fmt.Errorf("invalid object storage mode %q (allowed: %q, %q)", c.Mode, ModeGCS, ModeGCSEmulator)
	}
	if c.Mode == ModeGCSEmulator {
		if c.EmulatorHost == "" {
			return c, fmt.Errorf("object storage mode %q requires an emulator host", ModeGCSEmulator)
		}
		u, err := url.Parse(c.EmulatorHost)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return c, fmt.Errorf("invalid emulator host %q; expected absolute URL like http://fake-gcs:4443", c.EmulatorHost)
		}
	}
	return c, nil
}

func (c GCSConfig) clientOptions() []option.ClientOption {
	if c.Mode == ModeGCSEmulator {
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	creds := strings.TrimSpace(c.Credentials)
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

// ObjectURL is the address a browser would use to fetch key.
func (c GCSConfig) ObjectURL(key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case c.PublicBaseURL != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.PublicBaseURL, "/"), c.Bucket, key)
	case c.Mode == ModeGCSEmulator:
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", c.EmulatorHost, url.PathEscape(c.Bucket), url.PathEscape(key))
	default:
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.Bucket, key)
	}
}

// GCS stores blobs as objects in a single bucket.
type GCS struct {
	log    *logger.Logger
	client *gcs.Client
	cfg    GCSConfig
}

func NewGCS(ctx context.Context, log *logger.Logger, cfg GCSConfig) (*GCS, error) {
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	if resolved.Mode == ModeGCSEmulator {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", resolved.EmulatorHost)
	}
	client, err := gcs.NewClient(ctx, resolved.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	log = log.With("service", "GCSBlobStore")
	log.Info("Object storage initialized", "mode", resolved.Mode, "bucket", resolved.Bucket, "emulator_host", resolved.EmulatorHost)
	return &GCS{log: log, client: client, cfg: resolved}, nil
}

func (s *GCS) Driver() string { return DriverGCS }

func (s *GCS) Close() error { return s.client.Close() }

func (s *GCS) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	k, err := CleanKey(key)
	if err != nil {
		return Info{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.cfg.Bucket).Object(k).NewWriter(ctx)
	w.ContentType = opts.ContentType
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return Info{}, fmt.Errorf("write gcs object %q: %w", k, err)
	}
	if err := w.Close(); err != nil {
		return Info{}, fmt.Errorf("close gcs writer %q: %w", k, err)
	}
	info := Info{Key: k, Size: n, ContentType: opts.ContentType, URL: s.cfg.ObjectURL(k)}
	if attrs := w.Attrs(); attrs != nil {
		info.ETag = attrs.Etag
	}
	return info, nil
}

// readCloserWithCancel ties the read deadline to Close so callers can keep
// streaming after Get returns.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

func (s *GCS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	rc, err := s.client.Bucket(s.cfg.Bucket).Object(k).NewReader(ctx)
	if err != nil {
		cancel()
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open gcs object %q: %w", k, err)
	}
	return &readCloserWithCancel{ReadCloser: rc, cancel: cancel}, nil
}

func (s *GCS) Delete(ctx context.Context, key string) (bool, error) {
	k, err := CleanKey(key)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(s.cfg.Bucket).Object(k).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("delete gcs object %q: %w", k, err)
	}
	return true, nil
}
