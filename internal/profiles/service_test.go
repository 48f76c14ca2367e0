package profiles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secosha/marketplace/pkg/db/dbtest"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)), logger.Nop())
	require.NoError(t, err)
	return svc
}

func TestEnsureCreatesOnlyOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Ensure(ctx, userID, EnsureProfileRequest{Email: "Ana@Example.com", FullName: " Ana "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", first.FullName)
	assert.Equal(t, "ana@example.com", first.Email)
	assert.Empty(t, first.DeliveryTypes)

	second, err := svc.Ensure(ctx, userID, EnsureProfileRequest{Email: "other@example.com", FullName: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", second.FullName, "existing profile must not be overwritten")
}

func TestUpsertOverwritesSettings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Ensure(ctx, userID, EnsureProfileRequest{FullName: "Ana"})
	require.NoError(t, err)

	updated, err := svc.Upsert(ctx, userID, UpdateProfileRequest{
		FullName:      "Ana Silva",
		Location:      "Lisbon",
		Bio:           "Vintage denim",
		DeliveryTypes: []string{"Local pickup", "Standard shipping", "Local pickup"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", updated.FullName)
	assert.Equal(t, "Lisbon", updated.Location)
	assert.Equal(t, []string{"Local pickup", "Standard shipping"}, updated.DeliveryTypes)
}

func TestUpsertInsertsMissingProfile(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	got, err := svc.Upsert(context.Background(), userID, UpdateProfileRequest{Location: "Porto"})
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)
	assert.Equal(t, "Porto", got.Location)
}

func TestGetMissingProfile(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
