package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secosha/marketplace/internal/cart"
	"github.com/secosha/marketplace/internal/localstore"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, state := newRootCmd()
	defer state.close()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func useDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECOSHA_CLIENT_DATA_DIR", dir)
	t.Setenv("SECOSHA_CLIENT_API_BASE_URL", "http://127.0.0.1:1")
	return dir
}

func seedCart(t *testing.T, dir string, raw string) {
	t.Helper()
	store, err := localstore.NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), cart.StorageKey, []byte(raw)))
}

func TestCartCommandsEditPersistedCart(t *testing.T) {
	dir := useDataDir(t)
	seedCart(t, dir, `[{"id":"a","title":"Wool coat","price":"80","quantity":1},{"id":"b","title":"Denim","price":"25.5","quantity":2}]`)

	out, err := execute(t, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Wool coat")
	assert.Contains(t, out, "3 item(s), total $131.00")

	out, err = execute(t, "cart", "qty", "a", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "3 item(s), total $131.00", "quantity is clamped to 1")

	out, err = execute(t, "cart", "remove", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "1 item(s), total $80.00")

	_, err = execute(t, "cart", "clear")
	require.NoError(t, err)
	out, err = execute(t, "cart", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}

func TestCartQtyRejectsNonNumeric(t *testing.T) {
	useDataDir(t)
	_, err := execute(t, "cart", "qty", "a", "many")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestProtectedCommandsRequireSignIn(t *testing.T) {
	useDataDir(t)
	for _, args := range [][]string{{"whoami"}, {"account"}, {"settings"}, {"sell", "--title", "Coat"}} {
		_, err := execute(t, args...)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized), "%v", args)
		assert.Contains(t, describe(err), "secosha login")
	}
}

func TestConfigCommandPrintsEffectiveConfig(t *testing.T) {
	useDataDir(t)
	t.Setenv("SECOSHA_CLIENT_SEARCH_DEBOUNCE", "450ms")
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "api_base_url: http://127.0.0.1:1")
	assert.Contains(t, out, "debounce: 450ms")
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	user := map[string]any{"id": "8d7d1d5e-0000-4000-8000-000000000001", "email": "ada@example.com", "full_name": "Ada"}
	write := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret1" {
			write(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": "AUTH_ERROR", "message": "invalid login credentials"}})
			return
		}
		write(w, http.StatusOK, map[string]any{"data": map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_at":    time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			"user":          user,
		}})
	})
	mux.HandleFunc("GET /api/v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"data": user})
	})
	mux.HandleFunc("POST /api/v1/profile/ensure", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"data": map[string]any{}})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"data": map[string]any{"status": "logged_out"}})
	})
	mux.HandleFunc("GET /api/v1/me/items", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"data": map[string]any{
			"items": []any{map[string]any{"id": "item-1", "title": "Wool coat", "price": "80", "size": "M", "condition": "Good", "created_at": time.Now().UTC().Format(time.RFC3339)}},
			"stats": map[string]any{"total_items": 1, "total_value": "80", "active_items": 1},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	useDataDir(t)
	srv := fakeAPI(t)
	t.Setenv("SECOSHA_CLIENT_API_BASE_URL", srv.URL)

	_, err := execute(t, "login", "--email", "ada@example.com", "--password", "wrong")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeAuth))

	out, err := execute(t, "login", "--email", "ada@example.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ada@example.com")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada <ada@example.com>")

	out, err = execute(t, "account")
	require.NoError(t, err)
	assert.Contains(t, out, "1 listing(s), 1 active, total value $80.00")
	assert.Contains(t, out, "item-1")

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	_, err = execute(t, "whoami")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestDescribeListsValidationDetails(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeValidation, "invalid listing").
		WithDetails(map[string]string{"title": "is required", "price": "must be a price"})
	assert.Equal(t, "invalid listing (price: must be a price; title: is required)", describe(err))
}

func TestBrowseFlagsSeedQuery(t *testing.T) {
	q, err := browseFlags{
		term:     "blazer",
		color:    "navy",
		size:     "M",
		minPrice: "20",
		sort:     "price_desc",
	}.query()
	require.NoError(t, err)
	assert.Equal(t, "blazer", q.Term)
	require.NotNil(t, q.Filters.Color)
	assert.Equal(t, "navy", *q.Filters.Color)
	require.NotNil(t, q.Filters.MinPrice)
	assert.Equal(t, "20", q.Filters.MinPrice.String())
	assert.Nil(t, q.Filters.MaxPrice)
	assert.Equal(t, 4, q.ActiveCount())
}

func TestBrowseRejectsInvalidFiltersBeforeStarting(t *testing.T) {
	useDataDir(t)
	_, err := execute(t, "browse", "--size", "XXXL", "--max-price=-3")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Contains(t, describe(err), "size:")
	assert.Contains(t, describe(err), "max_price:")
}
