package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-syncloader/pkg/source"
)

// The GCS client is abstracted behind small interfaces so the object source
// can be unit tested without a real client.

// GCSClient abstracts the top-level *storage.Client.
type GCSClient interface {
	Bucket(name string) GCSBucketHandle
}

// GCSBucketHandle abstracts a *storage.BucketHandle.
type GCSBucketHandle interface {
	Object(name string) GCSObjectHandle
}

// GCSObjectHandle abstracts a *storage.ObjectHandle.
type GCSObjectHandle interface {
	NewReader(ctx context.Context) (io.ReadCloser, error)
}

// NewGCSClientAdapter makes a concrete *storage.Client conform to GCSClient.
func NewGCSClientAdapter(client *storage.Client) GCSClient {
	if client == nil {
		return nil
	}
	return &gcsClientAdapter{client: client}
}

type gcsClientAdapter struct {
	client *storage.Client
}

func (a *gcsClientAdapter) Bucket(name string) GCSBucketHandle {
	return &gcsBucketHandleAdapter{handle: a.client.Bucket(name)}
}

type gcsBucketHandleAdapter struct {
	handle *storage.BucketHandle
}

func (a *gcsBucketHandleAdapter) Object(name string) GCSObjectHandle {
	return &gcsObjectHandleAdapter{handle: a.handle.Object(name)}
}

type gcsObjectHandleAdapter struct {
	handle *storage.ObjectHandle
}

func (a *gcsObjectHandleAdapter) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return a.handle.NewReader(ctx)
}

// GCSConfig holds the object coordinates for a GCSObjectSource.
type GCSConfig struct {
	BucketName string
	ObjectName string
}

// GCSObjectSource is a remote-capability backend reading one JSON-encoded
// object from Google Cloud Storage.
type GCSObjectSource[T any] struct {
	source.RemoteOnly[T]

	client GCSClient
	cfg    GCSConfig
	empty  T
	logger zerolog.Logger
}

// NewGCSObjectSource creates a GCSObjectSource.
func NewGCSObjectSource[T any](cfg GCSConfig, client GCSClient, empty T, logger zerolog.Logger) (*GCSObjectSource[T], error) {
	if client == nil {
		return nil, fmt.Errorf("gcs client cannot be nil")
	}
	if cfg.BucketName == "" || cfg.ObjectName == "" {
		return nil, fmt.Errorf("bucket and object names cannot be empty")
	}
	return &GCSObjectSource[T]{
		client: client,
		cfg:    cfg,
		empty:  empty,
		logger: logger.With().Str("component", "GCSObjectSource").Logger(),
	}, nil
}

// EmptyValue returns the configured empty value.
func (s *GCSObjectSource[T]) EmptyValue() T {
	return s.empty
}

// ReadRemote downloads and decodes the configured object.
func (s *GCSObjectSource[T]) ReadRemote(ctx context.Context) (T, error) {
	reader, err := s.client.Bucket(s.cfg.BucketName).Object(s.cfg.ObjectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			s.logger.Warn().Str("object", s.cfg.ObjectName).Msg("Object not found in GCS.")
			return s.empty, fmt.Errorf("object not found: %w", err)
		}
		s.logger.Error().Err(err).Str("object", s.cfg.ObjectName).Msg("Failed to open GCS object reader.")
		return s.empty, fmt.Errorf("gcs reader for %s: %w", s.cfg.ObjectName, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var value T
	if err := json.NewDecoder(reader).Decode(&value); err != nil {
		s.logger.Error().Err(err).Str("object", s.cfg.ObjectName).Msg("Failed to decode GCS object data.")
		return s.empty, fmt.Errorf("failed to decode object %s: %w", s.cfg.ObjectName, err)
	}
	return value, nil
}
