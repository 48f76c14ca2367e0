package sell

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/secosha/marketplace/internal/browse"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

// MaxImages caps the photos attached to one listing.
const MaxImages = 5

// RouteAccount is where the client navigates after a successful submit.
const RouteAccount = "account"

// File is one local image picked for upload.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body []byte) (string, error)
}

// ItemStore persists a validated listing.
type ItemStore interface {
	Create(ctx context.Context, sub Submission) (browse.Listing, error)
}

// Flow drives the sell form: image uploads, validation and submission.
type Flow struct {
	uploader Uploader
	store    ItemStore
	logg     *logger.Logger
	now      func() time.Time
	newID    func() string

	mu        sync.Mutex
	draft     Draft
	nextRoute string
}

// Option customizes a Flow.
type Option func(*Flow)

// WithClock overrides the timestamp used in generated file names.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// WithIDs overrides the unique suffix used in generated file names.
func WithIDs(newID func() string) Option {
	return func(f *Flow) { f.newID = newID }
}

func NewFlow(uploader Uploader, store ItemStore, logg *logger.Logger, opts ...Option) *Flow {
	f := &Flow{
		uploader: uploader,
		store:    store,
		logg:     logg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Draft returns a copy of the current form state.
func (f *Flow) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyDraft(f.draft)
}

// Edit applies fn to the text fields of the draft. Images are managed by AddImages and RemoveImage.
func (f *Flow) Edit(fn func(d *Draft)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	images := f.draft.Images
	fn(&f.draft)
	f.draft.Images = images
}

// AddImages uploads files in order and appends their URLs. Only the free
// slots up to MaxImages are filled; the excess is never uploaded and is
// reported as a capacity error once the accepted files are stored. When no
// slot is free nothing is uploaded. On an upload failure the images uploaded
// earlier in the batch stay attached.
func (f *Flow) AddImages(ctx context.Context, files []File) error {
	f.mu.Lock()
	current := len(f.draft.Images)
	f.mu.Unlock()

	free := MaxImages - current
	if free < 0 {
		free = 0
	}
	accepted, dropped := files, 0
	if len(files) > free {
		accepted, dropped = files[:free], len(files)-free
	}

	ctx = f.logg.WithComponent(ctx, "sell")
	for _, file := range accepted {
		name := f.objectName(file)
		url, err := f.uploader.Upload(ctx, name, file.ContentType, file.Body)
		if err != nil {
			f.logg.Error(f.logg.WithField(ctx, "file", file.Name), "image upload failed", err)
			if typed := pkgerrors.As(err); typed != nil {
				return typed
			}
			return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "image upload failed")
		}
		f.mu.Lock()
		f.draft.Images = append(f.draft.Images, url)
		if len(f.draft.Images) > MaxImages {
			f.draft.Images = f.draft.Images[:MaxImages]
		}
		f.mu.Unlock()
	}

	if dropped > 0 {
		names := make([]string, 0, dropped)
		for _, file := range files[free:] {
			names = append(names, file.Name)
		}
		return pkgerrors.New(pkgerrors.CodeCapacity, fmt.Sprintf("a listing can have at most %d images", MaxImages)).
			WithDetails(map[string]any{
				"current":  current,
				"accepted": len(accepted),
				"dropped":  names,
				"max":      MaxImages,
			})
	}
	return nil
}

// RemoveImage drops the image at index i; out of range is a no-op.
func (f *Flow) RemoveImage(i int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.draft.Images) {
		return false
	}
	f.draft.Images = append(f.draft.Images[:i:i], f.draft.Images[i+1:]...)
	return true
}

// Submit validates and stores the draft. On success the draft resets and
// NextRoute reports the account view; on failure the draft is kept.
func (f *Flow) Submit(ctx context.Context) (browse.Listing, error) {
	draft := f.Draft()
	sub, err := Validate(draft)
	if err != nil {
		return browse.Listing{}, err
	}

	ctx = f.logg.WithComponent(ctx, "sell")
	listing, err := f.store.Create(ctx, sub)
	if err != nil {
		f.logg.Warn(f.logg.WithField(ctx, "error", err.Error()), "listing rejected")
		return browse.Listing{}, err
	}

	f.mu.Lock()
	f.draft = Draft{}
	f.nextRoute = RouteAccount
	f.mu.Unlock()

	f.logg.Info(f.logg.WithItemID(ctx, listing.ID), "listing published")
	return listing, nil
}

// NextRoute is empty until a submit succeeds.
func (f *Flow) NextRoute() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextRoute
}

// objectName builds <unix-millis>-<id>.<ext>.
func (f *Flow) objectName(file File) string {
	return fmt.Sprintf("%d-%s.%s", f.now().UnixMilli(), f.newID(), extension(file))
}

func extension(file File) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Name)), "."); ext != "" {
		return ext
	}
	switch strings.ToLower(strings.TrimSpace(file.ContentType)) {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}

func copyDraft(d Draft) Draft {
	if d.Images != nil {
		d.Images = append([]string(nil), d.Images...)
	}
	return d
}
