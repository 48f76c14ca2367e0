package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
	"github.com/secosha/marketplace/pkg/storage/gcs"
)

type objectStore interface {
	UploadObject(ctx context.Context, bucket, object string, body []byte, opts gcs.UploadOptions) error
	PublicURL(bucket, object string) string
}

// Service stores listing photos in the public image bucket.
type Service interface {
	UploadImage(ctx context.Context, userID uuid.UUID, input UploadInput) (*UploadOutput, error)
}

// UploadInput is one raw image upload.
type UploadInput struct {
	FileName    string
	ContentType string
	Body        []byte
}

// UploadOutput points at the stored object.
type UploadOutput struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
}

// ServiceParams bundles the media service dependencies.
type ServiceParams struct {
	Store          objectStore
	Bucket         string
	CacheControl   string
	MaxUploadBytes int64
	Logger         *logger.Logger
}

type service struct {
	store        objectStore
	bucket       string
	cacheControl string
	maxBytes     int64
	logg         *logger.Logger
}

// NewService constructs a media service backed by the object store.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if params.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{
		store:        params.Store,
		bucket:       params.Bucket,
		cacheControl: params.CacheControl,
		maxBytes:     params.MaxUploadBytes,
		logg:         params.Logger,
	}, nil
}

func (s *service) UploadImage(ctx context.Context, userID uuid.UUID, input UploadInput) (*UploadOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	fileName := sanitizeFileName(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]string{"name": "is required"})
	}
	if len(input.Body) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image body is empty")
	}
	if int64(len(input.Body)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image must be at most %d bytes", s.maxBytes))
	}
	contentType, err := resolveImageType(input.ContentType, input.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	object := ObjectPath(userID, fileName)
	err = s.store.UploadObject(ctx, s.bucket, object, input.Body, gcs.UploadOptions{
		ContentType:  contentType,
		CacheControl: s.cacheControl,
		NoOverwrite:  true,
	})
	if err != nil {
		if errors.Is(err, gcs.ErrObjectExists) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an image with this name already exists")
		}
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "object", object), "media.upload_failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}

	return &UploadOutput{
		URL:         s.store.PublicURL(s.bucket, object),
		Path:        object,
		ContentType: contentType,
	}, nil
}

// ObjectPath scopes an upload under the owner's folder.
func ObjectPath(userID uuid.UUID, fileName string) string {
	return userID.String() + "/" + fileName
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
