package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/secosha/marketplace/pkg/auth"
	"github.com/secosha/marketplace/pkg/auth/session"
	"github.com/secosha/marketplace/pkg/config"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

type sessionManager interface {
	Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error)
	Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// issueTokens mints an access token and stores a fresh refresh token for it.
func issueTokens(ctx context.Context, cfg config.JWTConfig, sessions sessionManager, user SessionUser, now time.Time) (*TokenResponse, error) {
	accessID := session.NewAccessID()
	refreshToken, err := sessions.Generate(ctx, user.ID, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return mintResponse(cfg, user, accessID, refreshToken, now)
}

func mintResponse(cfg config.JWTConfig, user SessionUser, accessID, refreshToken string, now time.Time) (*TokenResponse, error) {
	accessToken, err := pkgAuth.MintAccessToken(cfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(pkgAuth.AccessTokenTTL(cfg)),
		User:         user,
	}, nil
}
