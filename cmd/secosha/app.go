package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/secosha/marketplace/internal/cart"
	"github.com/secosha/marketplace/internal/clientconfig"
	"github.com/secosha/marketplace/internal/gate"
	"github.com/secosha/marketplace/internal/localstore"
	"github.com/secosha/marketplace/pkg/client"
	"github.com/secosha/marketplace/pkg/logger"
	"github.com/secosha/marketplace/pkg/redis"
)

// kvStore backs both the cart and the persisted session.
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// app is built once per invocation and shared by every command.
type app struct {
	cfg  clientconfig.Config
	logg *logger.Logger

	store kvStore
	cart  *cart.Store
	api   *client.Client
	gate  *gate.Gate

	closers []io.Closer
}

type appOptions struct {
	configPath string
	verbose    bool
	// interactive keeps log output off the terminal while a TUI owns it.
	interactive bool
	stderr      io.Writer
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := clientconfig.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	a := &app{cfg: cfg}
	if err := a.openLogger(opts); err != nil {
		return nil, err
	}
	ctx = a.logg.WithComponent(ctx, "secosha")

	store, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store
	a.cart = cart.Open(ctx, store, a.logg)

	api, err := client.New(client.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.Timeout,
		Store:   store,
		Breaker: client.BreakerSettings{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		},
		Logger: a.logg,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.api = api

	a.gate = gate.New(api, api, a.logg)
	a.gate.Start(ctx)
	return a, nil
}

func (a *app) openLogger(opts appOptions) error {
	level := logger.ParseLevel(a.cfg.LogLevel)
	if opts.verbose {
		level = logger.ParseLevel("debug")
	}

	var out io.Writer = opts.stderr
	path := a.cfg.LogFile
	if path == "" && opts.interactive {
		path = filepath.Join(a.cfg.DataDir, "secosha.log")
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.closers = append(a.closers, f)
		out = f
	}
	if out == nil {
		out = os.Stderr
	}
	a.logg = logger.New(logger.Options{ServiceName: "secosha", Level: level, Output: out})
	return nil
}

func (a *app) openStore(ctx context.Context) (kvStore, error) {
	switch a.cfg.Store.Backend {
	case clientconfig.BackendRedis:
		rc, err := redis.NewFromURL(ctx, a.cfg.Store.RedisURL, a.logg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc)
		return localstore.NewRedis(rc)
	default:
		return localstore.NewFile(a.cfg.DataDir)
	}
}

// Close releases the store connection and log file.
func (a *app) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i].Close())
	}
	a.closers = nil
	return err
}
