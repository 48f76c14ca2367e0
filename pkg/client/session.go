package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/secosha/marketplace/internal/gate"
	"github.com/secosha/marketplace/internal/localstore"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

// SessionKey is the local store key holding the signed-in session.
const SessionKey = "secosha_session_v1"

type storedSession = gate.Session

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// CurrentSession returns the persisted session after confirming it with the
// API. It returns nil when nobody is signed in or the session was revoked.
func (c *Client) CurrentSession(ctx context.Context) (*gate.Session, error) {
	session, err := c.currentSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	var user gate.User
	req := request{method: http.MethodGet, path: "/api/v1/auth/session", auth: true}
	if err := c.call(ctx, req, &user); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	c.session.User = user
	out := *c.session
	return &out, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*gate.Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/register", credentials{Email: email, Password: password, FullName: fullName})
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*gate.Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/login", credentials{Email: email, Password: password})
}

// SignOut revokes the remote session and always forgets the local one.
func (c *Client) SignOut(ctx context.Context) error {
	session, err := c.currentSession(ctx)
	if err != nil {
		return err
	}
	var remoteErr error
	if session != nil {
		req := request{method: http.MethodPost, path: "/api/v1/auth/logout", auth: true}
		raw, err := c.send(ctx, req, session.AccessToken)
		if err == nil {
			err = decode(raw, nil)
		}
		if err != nil && !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
			remoteErr = err
		}
	}
	if err := c.saveSession(ctx, nil); err != nil {
		return err
	}
	return remoteErr
}

func (c *Client) authenticate(ctx context.Context, path string, creds credentials) (*gate.Session, error) {
	req, err := jsonRequest(http.MethodPost, path, creds, false)
	if err != nil {
		return nil, err
	}
	var session gate.Session
	if err := c.call(ctx, req, &session); err != nil {
		return nil, err
	}
	if err := c.saveSession(ctx, &session); err != nil {
		return nil, err
	}
	out := session
	return &out, nil
}

// refresh rotates the token pair. Concurrent callers share one round trip.
// A rejected refresh signs the user out locally.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		session, err := c.currentSession(ctx)
		if err != nil {
			return nil, err
		}
		if session == nil || session.RefreshToken == "" {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
		}

		req, err := jsonRequest(http.MethodPost, "/api/v1/auth/refresh", refreshBody{RefreshToken: session.RefreshToken}, false)
		if err != nil {
			return nil, err
		}
		raw, err := c.send(ctx, req, session.AccessToken)
		if err != nil {
			return nil, err
		}
		var next gate.Session
		if err := decode(raw, &next); err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
				_ = c.saveSession(ctx, nil)
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired, sign in again")
			}
			return nil, err
		}
		return nil, c.saveSession(ctx, &next)
	})
	return err
}

// currentSession loads the persisted session on first use.
func (c *Client) currentSession(ctx context.Context) (*gate.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		raw, err := c.store.Get(ctx, SessionKey)
		switch {
		case err == nil:
			var session gate.Session
			if err := json.Unmarshal(raw, &session); err != nil {
				c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "stored session unreadable, signing out")
			} else if session.AccessToken != "" {
				c.session = &session
			}
		case errors.Is(err, localstore.ErrNotFound):
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorageRead, err, "read session")
		}
		c.loaded = true
	}
	if c.session == nil {
		return nil, nil
	}
	out := *c.session
	return &out, nil
}

func (c *Client) saveSession(ctx context.Context, session *gate.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	if session == nil {
		c.session = nil
		if err := c.store.Delete(ctx, SessionKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear session")
		}
		return nil
	}
	copied := *session
	c.session = &copied
	payload, err := json.Marshal(copied)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session")
	}
	if err := c.store.Set(ctx, SessionKey, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist session")
	}
	return nil
}

// SessionExpiresAt reports when the current access token lapses.
func (c *Client) SessionExpiresAt(ctx context.Context) (time.Time, bool) {
	session, err := c.currentSession(ctx)
	if err != nil || session == nil {
		return time.Time{}, false
	}
	return session.ExpiresAt, true
}
