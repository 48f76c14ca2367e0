package gate

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

// Phase tracks whether the initial session lookup has finished.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// User is the signed-in identity.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Session is what the identity provider hands back after authentication.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Identity is the remote authentication provider.
type Identity interface {
	// CurrentSession returns nil without error when nobody is signed in.
	CurrentSession(ctx context.Context) (*Session, error)
	SignUp(ctx context.Context, email, password, fullName string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
}

// Profiles creates the profile row for a user when missing.
type Profiles interface {
	EnsureProfile(ctx context.Context, userID, email, fullName string) error
}

// Change is delivered to subscribers on every session transition.
type Change struct {
	Phase Phase
	User  *User
}

// Gate owns the client's view of who is signed in.
type Gate struct {
	identity Identity
	profiles Profiles
	logg     *logger.Logger

	mu      sync.Mutex
	phase   Phase
	user    *User
	ensured map[string]struct{}
	subs    map[int]func(Change)
	nextSub int
}

func New(identity Identity, profiles Profiles, logg *logger.Logger) *Gate {
	return &Gate{
		identity: identity,
		profiles: profiles,
		logg:     logg,
		phase:    PhaseLoading,
		ensured:  map[string]struct{}{},
		subs:     map[int]func(Change){},
	}
}

// Start resolves the persisted session. Failures leave the gate ready and signed out.
func (g *Gate) Start(ctx context.Context) {
	ctx = g.logg.WithComponent(ctx, "gate")

	session, err := g.identity.CurrentSession(ctx)
	if err != nil {
		g.logg.Warn(g.logg.WithField(ctx, "error", err.Error()), "session lookup failed")
		session = nil
	}

	var user *User
	if session != nil && session.User.ID != "" {
		u := session.User
		user = &u
		g.ensureProfile(ctx, u)
	}

	g.mu.Lock()
	g.phase = PhaseReady
	g.user = user
	g.mu.Unlock()
	g.notify()
}

func (g *Gate) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// CurrentUser returns the signed-in user, if any.
func (g *Gate) CurrentUser() (User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil {
		return User{}, false
	}
	return *g.user, true
}

func (g *Gate) SignUp(ctx context.Context, email, password, fullName string) (User, error) {
	ctx = g.logg.WithComponent(ctx, "gate")
	session, err := g.identity.SignUp(ctx, email, password, fullName)
	if err != nil {
		return User{}, authError(err)
	}
	return g.establish(ctx, session)
}

func (g *Gate) SignIn(ctx context.Context, email, password string) (User, error) {
	ctx = g.logg.WithComponent(ctx, "gate")
	session, err := g.identity.SignIn(ctx, email, password)
	if err != nil {
		return User{}, authError(err)
	}
	return g.establish(ctx, session)
}

// SignOut always clears the local user, even when the remote call fails.
func (g *Gate) SignOut(ctx context.Context) error {
	ctx = g.logg.WithComponent(ctx, "gate")
	err := g.identity.SignOut(ctx)
	if err != nil {
		g.logg.Warn(g.logg.WithField(ctx, "error", err.Error()), "remote sign out failed")
	}

	g.mu.Lock()
	g.user = nil
	g.phase = PhaseReady
	g.mu.Unlock()
	g.notify()
	return err
}

// Require guards screens that need a signed-in user.
func (g *Gate) Require() (User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == PhaseLoading {
		return User{}, pkgerrors.New(pkgerrors.CodeDependency, "session loading")
	}
	if g.user == nil {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	return *g.user, nil
}

// Subscribe registers fn for session changes.
func (g *Gate) Subscribe(fn func(Change)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subs, id)
			g.mu.Unlock()
		})
	}
}

func (g *Gate) establish(ctx context.Context, session *Session) (User, error) {
	if session == nil || session.User.ID == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeAuth, "no session returned")
	}
	user := session.User
	g.ensureProfile(ctx, user)

	g.mu.Lock()
	g.user = &user
	g.phase = PhaseReady
	g.mu.Unlock()
	g.notify()
	return user, nil
}

// ensureProfile runs once per user id; a failure is logged and retried on the next establishment.
func (g *Gate) ensureProfile(ctx context.Context, user User) {
	if g.profiles == nil {
		return
	}
	g.mu.Lock()
	_, done := g.ensured[user.ID]
	g.mu.Unlock()
	if done {
		return
	}

	ctx = g.logg.WithUserID(ctx, user.ID)
	if err := g.profiles.EnsureProfile(ctx, user.ID, user.Email, user.FullName); err != nil {
		g.logg.Warn(g.logg.WithField(ctx, "error", err.Error()), "ensure profile failed")
		return
	}

	g.mu.Lock()
	g.ensured[user.ID] = struct{}{}
	g.mu.Unlock()
}

func (g *Gate) notify() {
	g.mu.Lock()
	change := Change{Phase: g.phase}
	if g.user != nil {
		u := *g.user
		change.User = &u
	}
	subs := make([]func(Change), 0, len(g.subs))
	for _, fn := range g.subs {
		subs = append(subs, fn)
	}
	g.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

// authError keeps the provider's message so the form can show it verbatim.
func authError(err error) error {
	msg := err.Error()
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		msg = typed.Message()
	}
	return pkgerrors.Wrap(pkgerrors.CodeAuth, err, msg)
}
