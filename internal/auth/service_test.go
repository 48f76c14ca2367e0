package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secosha/marketplace/internal/profiles"
	"github.com/secosha/marketplace/internal/users"
	pkgAuth "github.com/secosha/marketplace/pkg/auth"
	"github.com/secosha/marketplace/pkg/auth/session"
	"github.com/secosha/marketplace/pkg/config"
	"github.com/secosha/marketplace/pkg/db"
	"github.com/secosha/marketplace/pkg/db/dbtest"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

var (
	testJWT      = config.JWTConfig{Secret: "secret", Issuer: "secosha", ExpirationMinutes: 30}
	testPassword = config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1}
)

type fixture struct {
	client   *db.Client
	sessions *memorySessions
	login    Service
	register RegisterService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Client(t)
	sessions := newMemorySessions()

	login, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(client.DB()),
		ProfileRepo:    profiles.NewRepository(client.DB()),
		SessionManager: sessions,
		JWTConfig:      testJWT,
		Logger:         logger.Nop(),
	})
	require.NoError(t, err)

	register, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		SessionManager: sessions,
		PasswordConfig: testPassword,
		JWTConfig:      testJWT,
		Logger:         logger.Nop(),
	})
	require.NoError(t, err)

	return &fixture{client: client, sessions: sessions, login: login, register: register}
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.register.Register(ctx, RegisterRequest{Email: " Ana@Example.com ", Password: "hunter22", FullName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "Ana", resp.User.FullName)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)

	profile, err := profiles.NewRepository(f.client.DB()).FindByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.FullName)
	assert.Equal(t, "ana@example.com", profile.Email)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.register.Register(ctx, RegisterRequest{Email: "dup@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = f.register.Register(ctx, RegisterRequest{Email: "DUP@example.com", Password: "hunter22"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.register.Register(context.Background(), RegisterRequest{Email: "weak@example.com", Password: "123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestLoginSucceedsAndRecordsLastLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered, err := f.register.Register(ctx, RegisterRequest{Email: "seller@example.com", Password: "hunter22", FullName: "Sam"})
	require.NoError(t, err)

	resp, err := f.login.Login(ctx, LoginRequest{Email: "SELLER@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.Equal(t, "Sam", resp.User.FullName)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	user, err := users.NewRepository(f.client.DB()).FindByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLoginBadCredentialsIsAuthError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.register.Register(ctx, RegisterRequest{Email: "seller@example.com", Password: "hunter22"})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Email: "seller@example.com", Password: "wrong-pass"},
		{Email: "nobody@example.com", Password: "hunter22"},
		{Email: "  ", Password: "hunter22"},
	} {
		_, err := f.login.Login(ctx, req)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeAuth, typed.Code())
		assert.Equal(t, "invalid login credentials", typed.Message())
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.register.Register(ctx, RegisterRequest{Email: "rot@example.com", Password: "hunter22"})
	require.NoError(t, err)

	second, err := f.login.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.User.ID, second.User.ID)

	_, err = f.login.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp, err := f.register.Register(ctx, RegisterRequest{Email: "bye@example.com", Password: "hunter22"})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	ok, err := f.sessions.HasSession(ctx, claims.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.login.Logout(ctx, resp.AccessToken))
	ok, err = f.sessions.HasSession(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.login.Logout(ctx, "garbage")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestSessionReturnsProfileName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp, err := f.register.Register(ctx, RegisterRequest{Email: "me@example.com", Password: "hunter22", FullName: "Me"})
	require.NoError(t, err)

	user, err := f.login.Session(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Me", user.FullName)

	_, err = f.login.Session(ctx, uuid.New())
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

type sessionEntry struct {
	userID uuid.UUID
	token  string
}

type memorySessions struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	counter int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{entries: map[string]sessionEntry{}}
}

func (m *memorySessions) Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	token := uuid.NewString()
	m.entries[accessID] = sessionEntry{userID: userID, token: token}
	return token, nil
}

func (m *memorySessions) Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[oldAccessID]
	if !ok || entry.userID != userID || entry.token != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.entries, oldAccessID)
	newID := session.NewAccessID()
	token := uuid.NewString()
	m.entries[newID] = sessionEntry{userID: userID, token: token}
	return newID, token, nil
}

func (m *memorySessions) Revoke(ctx context.Context, accessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, accessID)
	return nil
}

func (m *memorySessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[accessID]
	return ok, nil
}
