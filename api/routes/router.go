package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/secosha/marketplace/api/controllers"
	"github.com/secosha/marketplace/api/middleware"
	"github.com/secosha/marketplace/internal/auth"
	"github.com/secosha/marketplace/internal/items"
	"github.com/secosha/marketplace/internal/listings"
	"github.com/secosha/marketplace/internal/media"
	"github.com/secosha/marketplace/internal/profiles"
	"github.com/secosha/marketplace/pkg/auth/session"
	"github.com/secosha/marketplace/pkg/config"
	"github.com/secosha/marketplace/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	Readiness   map[string]controllers.Pinger
	RateLimiter rateLimiter
	Sessions    session.AccessSessionChecker

	Auth     auth.Service
	Register auth.RegisterService
	Profiles profiles.Service
	Items    items.Service
	Listings listings.Service
	Media    media.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewThrottlePolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewThrottlePolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Throttle(loginPolicy, deps.RateLimiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.Throttle(registerPolicy, deps.RateLimiter, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		r.With(requireAuth).Get("/session", controllers.AuthSession(deps.Auth, logg))
	})

	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Get("/", controllers.ListingsSearch(deps.Listings, logg))
		r.Get("/{itemId}", controllers.ListingDetail(deps.Listings, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/api/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Profiles, logg))
			r.Put("/", controllers.ProfileUpsert(deps.Profiles, logg))
			r.Post("/ensure", controllers.ProfileEnsure(deps.Profiles, logg))
		})

		r.Get("/api/v1/me/items", controllers.MyItems(deps.Items, logg))

		r.Route("/api/v1/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(deps.Items, logg))
			r.Delete("/{itemId}", controllers.ItemDelete(deps.Items, logg))
		})

		r.Post("/api/v1/media/images", controllers.MediaUploadImage(deps.Media, cfg.Media.MaxUploadBytes(), logg))
	})

	return r
}
