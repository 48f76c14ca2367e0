package sell

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secosha/marketplace/internal/browse"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

type fakeUploader struct {
	names  []string
	failOn int
}

func (u *fakeUploader) Upload(_ context.Context, name, _ string, _ []byte) (string, error) {
	if u.failOn > 0 && len(u.names)+1 == u.failOn {
		return "", errors.New("connection reset")
	}
	u.names = append(u.names, name)
	return "https://cdn.test/" + name, nil
}

type fakeStore struct {
	got []Submission
	err error
}

func (s *fakeStore) Create(_ context.Context, sub Submission) (browse.Listing, error) {
	if s.err != nil {
		return browse.Listing{}, s.err
	}
	s.got = append(s.got, sub)
	return browse.Listing{ID: "item-1", Title: sub.Title, Price: sub.Price, Images: sub.Images}, nil
}

func newFlow(u *fakeUploader, s *fakeStore) *Flow {
	seq := 0
	return NewFlow(u, s, logger.Nop(),
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		WithIDs(func() string { seq++; return fmt.Sprintf("id%d", seq) }),
	)
}

func files(n int) []File {
	out := make([]File, n)
	for i := range out {
		out[i] = File{Name: fmt.Sprintf("photo%d.PNG", i), ContentType: "image/png", Body: []byte("png")}
	}
	return out
}

func fillDraft(f *Flow) {
	f.Edit(func(d *Draft) {
		d.Title = "Wool coat"
		d.Description = "Warm and barely worn"
		d.Price = "80.5"
		d.Size = "M"
		d.Category = "Outerwear"
		d.Condition = "Like new"
	})
}

func TestAddImagesGeneratesNames(t *testing.T) {
	u := &fakeUploader{}
	f := newFlow(u, &fakeStore{})

	require.NoError(t, f.AddImages(context.Background(), []File{
		{Name: "coat.JPG", ContentType: "image/jpeg"},
		{Name: "noext", ContentType: "image/webp"},
	}))

	assert.Equal(t, []string{"1700000000000-id1.jpg", "1700000000000-id2.webp"}, u.names)
	assert.Equal(t, []string{
		"https://cdn.test/1700000000000-id1.jpg",
		"https://cdn.test/1700000000000-id2.webp",
	}, f.Draft().Images)
}

func TestAddImagesFillsFreeSlotsAndReportsExcess(t *testing.T) {
	u := &fakeUploader{}
	f := newFlow(u, &fakeStore{})
	require.NoError(t, f.AddImages(context.Background(), files(3)))

	err := f.AddImages(context.Background(), files(3))
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeCapacity))
	assert.Len(t, u.names, 5)
	assert.Len(t, f.Draft().Images, MaxImages)

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, details["accepted"])
	assert.Equal(t, []string{"photo2.PNG"}, details["dropped"])
}

func TestAddImagesWhenFullUploadsNothing(t *testing.T) {
	u := &fakeUploader{}
	f := newFlow(u, &fakeStore{})
	require.NoError(t, f.AddImages(context.Background(), files(MaxImages)))

	err := f.AddImages(context.Background(), files(2))
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeCapacity))
	assert.Len(t, u.names, MaxImages)
	assert.Len(t, f.Draft().Images, MaxImages)
}

func TestAddImagesOversizedBatchOnEmptyDraft(t *testing.T) {
	u := &fakeUploader{}
	f := newFlow(u, &fakeStore{})

	err := f.AddImages(context.Background(), files(7))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeCapacity))
	assert.Len(t, u.names, MaxImages)
	assert.Equal(t, "https://cdn.test/1700000000000-id1.png", f.Draft().Images[0])
}

func TestAddImagesKeepsEarlierUploadsOnFailure(t *testing.T) {
	u := &fakeUploader{failOn: 3}
	f := newFlow(u, &fakeStore{})

	err := f.AddImages(context.Background(), files(4))
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNetwork))
	assert.Len(t, f.Draft().Images, 2)
}

func TestRemoveImage(t *testing.T) {
	f := newFlow(&fakeUploader{}, &fakeStore{})
	require.NoError(t, f.AddImages(context.Background(), files(3)))
	before := f.Draft().Images

	assert.True(t, f.RemoveImage(1))
	assert.False(t, f.RemoveImage(7))
	assert.Equal(t, []string{before[0], before[2]}, f.Draft().Images)
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	store := &fakeStore{}
	f := newFlow(&fakeUploader{}, store)
	fillDraft(f)
	require.NoError(t, f.AddImages(context.Background(), files(1)))

	listing, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "item-1", listing.ID)
	require.Len(t, store.got, 1)
	assert.True(t, store.got[0].Price.Equal(decimal.RequireFromString("80.50")))
	assert.Len(t, store.got[0].Images, 1)

	assert.Equal(t, Draft{}, f.Draft())
	assert.Equal(t, RouteAccount, f.NextRoute())
}

func TestSubmitRejectionKeepsDraft(t *testing.T) {
	store := &fakeStore{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")}
	f := newFlow(&fakeUploader{}, store)
	fillDraft(f)

	_, err := f.Submit(context.Background())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, "Wool coat", f.Draft().Title)
	assert.Empty(t, f.NextRoute())
}

func TestSubmitValidationFailureSkipsStore(t *testing.T) {
	store := &fakeStore{}
	f := newFlow(&fakeUploader{}, store)
	f.Edit(func(d *Draft) { d.Title = "Coat" })

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Empty(t, store.got)
	assert.Equal(t, "Coat", f.Draft().Title)
}

func TestEditCannotReplaceImages(t *testing.T) {
	f := newFlow(&fakeUploader{}, &fakeStore{})
	require.NoError(t, f.AddImages(context.Background(), files(1)))
	f.Edit(func(d *Draft) { d.Images = nil })
	assert.Len(t, f.Draft().Images, 1)
}
