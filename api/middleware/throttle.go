package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/secosha/marketplace/api/responses"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

// maxThrottlePeek caps how much of a credentials body is buffered to find the account email.
const maxThrottlePeek = 64 << 10

// AttemptCounter counts attempts per key inside a fixed window. pkg/redis implements it.
type AttemptCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ThrottlePolicy limits sign-in and sign-up attempts for one surface
// ("login", "register"). Counters are kept per client address and per
// account email; a zero limit disables that dimension.
type ThrottlePolicy struct {
	surface    string
	window     time.Duration
	perAddress int
	perAccount int
}

func NewThrottlePolicy(surface string, window time.Duration, perAddress, perAccount int) ThrottlePolicy {
	surface = strings.ToLower(strings.TrimSpace(surface))
	if surface == "" {
		surface = "auth"
	}
	return ThrottlePolicy{
		surface:    surface,
		window:     window,
		perAddress: perAddress,
		perAccount: perAccount,
	}
}

func (p ThrottlePolicy) active() bool {
	return p.window > 0 && (p.perAddress > 0 || p.perAccount > 0)
}

// counterKey is throttle:<surface>:<dimension>:<value>.
func (p ThrottlePolicy) counterKey(dimension, value string) string {
	return "throttle:" + p.surface + ":" + dimension + ":" + value
}

type throttleCheck struct {
	dimension string
	value     string
	limit     int
}

// checks lists the counters a request must pass, address first.
func (p ThrottlePolicy) checks(address, accountHash string) []throttleCheck {
	var out []throttleCheck
	if p.perAddress > 0 && address != "" {
		out = append(out, throttleCheck{dimension: "ip", value: address, limit: p.perAddress})
	}
	if p.perAccount > 0 && accountHash != "" {
		out = append(out, throttleCheck{dimension: "email", value: accountHash, limit: p.perAccount})
	}
	return out
}

// Throttle rejects requests over either limit with RATE_LIMIT_EXCEEDED and a
// Retry-After of one window. A counter failure is reported as a dependency error.
func Throttle(policy ThrottlePolicy, counter AttemptCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || counter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var accountHash string
			if policy.perAccount > 0 {
				body, err := peekBody(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				if email := accountEmail(body); email != "" {
					accountHash = hashValue(email)
				}
			}

			for _, check := range policy.checks(clientIP(r), accountHash) {
				allowed, attempts, err := counter.FixedWindowAllow(ctx, policy.counterKey(check.dimension, check.value), int64(check.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					rejectThrottled(ctx, logg, w, policy, check, attempts)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// peekBody reads the request body and puts it back for the handler.
func peekBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxThrottlePeek))
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	return body, nil
}

func rejectThrottled(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy ThrottlePolicy, check throttleCheck, attempts int64) {
	if logg != nil {
		field := "ip"
		if check.dimension == "email" {
			field = "email_hash"
		}
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"surface":        policy.surface,
			"scope":          check.dimension,
			field:            check.value,
			"attempts":       attempts,
			"limit":          check.limit,
			"window_seconds": int(policy.window.Seconds()),
		}), "auth.throttled")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Round(time.Second).Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// accountEmail pulls the normalized email out of a login or register payload.
func accountEmail(payload []byte) string {
	var creds struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &creds); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(creds.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
