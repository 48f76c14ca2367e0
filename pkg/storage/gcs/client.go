package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/secosha/marketplace/pkg/config"
	"github.com/secosha/marketplace/pkg/logger"
)

const (
	defaultPublicBaseURL = "https://storage.googleapis.com"
	pingTimeout          = 5 * time.Second
)

// ErrObjectExists is returned when an upload would overwrite an existing object.
var ErrObjectExists = errors.New("gcs object already exists")

// Client stores listing images in a single public bucket.
type Client struct {
	storage       *storage.Client
	defaultBucket string
	publicBaseURL string
	cacheControl  string
}

// UploadOptions carries per-object metadata for UploadObject.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	// NoOverwrite makes the upload fail with ErrObjectExists instead of replacing.
	NoOverwrite bool
}

// NewClient builds the storage client from inline credentials, a credentials
// file or application default credentials, in that order, and checks that the
// image bucket is reachable. Extra options are appended last.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	var opts []option.ClientOption
	switch {
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	opts = append(opts, extra...)

	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	client := &Client{
		storage:       sc,
		defaultBucket: cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		cacheControl:  cfg.CacheControl,
	}

	if err := client.Ping(ctx); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}

	return client, nil
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

func (c *Client) Close() error {
	if c == nil || c.storage == nil {
		return nil
	}
	return c.storage.Close()
}

// Ping lists at most one object, which needs storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.storage == nil {
		return errors.New("gcs client not initialized")
	}
	if c.defaultBucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	it := c.storage.Bucket(c.defaultBucket).Objects(ctx, nil)
	it.PageInfo().MaxSize = 1
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("gcs object check failed: %w", err)
	}
	return nil
}

// UploadObject writes body to bucket/object in a single request.
func (c *Client) UploadObject(ctx context.Context, bucket, object string, body []byte, opts UploadOptions) error {
	if c == nil || c.storage == nil {
		return errors.New("gcs client not initialized")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if bucket == "" || object == "" {
		return errors.New("bucket and object are required")
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	cacheControl := opts.CacheControl
	if cacheControl == "" {
		cacheControl = c.cacheControl
	}

	handle := c.storage.Bucket(bucket).Object(object)
	if opts.NoOverwrite {
		handle = handle.If(storage.Conditions{DoesNotExist: true})
	}

	w := handle.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = cacheControl
	w.ChunkSize = 0

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return classifyWriteError(object, err)
	}
	if err := w.Close(); err != nil {
		return classifyWriteError(object, err)
	}
	return nil
}

// PublicURL returns the durable public URL of bucket/object.
func (c *Client) PublicURL(bucket, object string) string {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	base := c.publicBaseURL
	if base == "" {
		base = defaultPublicBaseURL
	}
	segments := strings.Split(object, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/%s/%s", base, url.PathEscape(bucket), strings.Join(segments, "/"))
}

// classifyWriteError maps the DoesNotExist precondition failure to ErrObjectExists.
func classifyWriteError(object string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%w: %s", ErrObjectExists, object)
	}
	return fmt.Errorf("gcs upload failed: %w", err)
}
