// Package app assembles the pipeline from configuration: storage
// backend, session store, redirect coordinator, refresher, transport
// and the typed API service, with lifecycle management for the pieces
// that hold resources.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/authkit/api"
	"github.com/kochabx/authkit/client"
	"github.com/kochabx/authkit/config"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/metrics"
	"github.com/kochabx/authkit/redirect"
	"github.com/kochabx/authkit/refresh"
	"github.com/kochabx/authkit/session"
	"github.com/kochabx/authkit/store"
	"github.com/kochabx/authkit/store/file"
	"github.com/kochabx/authkit/store/memory"
	"github.com/kochabx/authkit/store/redis"
)

var (
	ErrAlreadyClosed     = errors.New("app already closed")
	ErrClosePanic        = errors.New("close function panicked")
	ErrUnknownBackend    = errors.New("unknown storage backend")
	ErrSettingsRequired  = errors.New("settings are required")
	backendBuildRegistry = map[string]func(*config.Settings) (store.Storage, func(context.Context) error, error){
		"memory": buildMemory,
		"file":   buildFile,
		"redis":  buildRedis,
	}
)

// App owns an assembled pipeline and the shutdown of its resources.
type App struct {
	settings    *config.Settings
	storage     store.Storage
	session     *session.Store
	coordinator *redirect.Coordinator
	refresher   *refresh.Refresher
	client      *client.Client
	service     *api.Service
	recorder    metrics.Recorder
	logger      *log.Logger

	closeTimeout time.Duration
	closeFuncs   []CloseFunc

	mu     sync.Mutex
	closed bool
}

// CloseFunc is a named shutdown step with its own timeout.
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

// Option configures an App.
type Option func(*App)

// WithStorage overrides the storage backend selected by the settings.
func WithStorage(storage store.Storage) Option {
	return func(a *App) {
		a.storage = storage
	}
}

// WithLogger sets the logger. Defaults to log.G.
func WithLogger(logger *log.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder wires a metrics recorder through every component.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(a *App) {
		if recorder != nil {
			a.recorder = recorder
		}
	}
}

// WithCloseTimeout sets the default timeout for close functions.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(a *App) {
		if timeout > 0 {
			a.closeTimeout = timeout
		}
	}
}

// New builds the pipeline from the settings.
func New(settings *config.Settings, opts ...Option) (*App, error) {
	if settings == nil {
		return nil, ErrSettingsRequired
	}

	a := &App{
		settings:     settings,
		recorder:     metrics.NopRecorder{},
		logger:       log.G,
		closeTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.storage == nil {
		build, ok := backendBuildRegistry[settings.Storage.Backend]
		if !ok {
			return nil, ErrUnknownBackend
		}
		storage, closeFn, err := build(settings)
		if err != nil {
			return nil, err
		}
		a.storage = storage
		if closeFn != nil {
			a.closeFuncs = append(a.closeFuncs, CloseFunc{
				Name:    settings.Storage.Backend + "-storage",
				Fn:      closeFn,
				Timeout: a.closeTimeout,
			})
		}
	}

	a.session = session.NewStore(a.storage)

	a.coordinator = redirect.New(
		redirect.WithConfig(settings.Redirect),
		redirect.WithLogger(a.logger),
		redirect.WithRecorder(a.recorder),
	)

	a.refresher = refresh.New(a.session, settings.API.BaseURL+settings.API.RefreshEndpoint,
		refresh.WithCoordinator(a.coordinator),
		refresh.WithLogger(a.logger),
		refresh.WithRecorder(a.recorder),
		refresh.WithTimeout(settings.API.Timeout),
	)

	transport := client.NewTransport(a.session, a.refresher,
		client.WithPolicy(settings.BuildPolicy()),
		client.WithCoordinator(a.coordinator),
		client.WithLogger(a.logger),
		client.WithRecorder(a.recorder),
		client.WithRefreshLeeway(settings.API.RefreshLeeway),
	)

	a.client = client.New(
		client.WithBaseURL(settings.API.BaseURL),
		client.WithTransport(transport),
	)

	a.service = api.New(a.client, a.session, api.WithLogger(a.logger))

	return a, nil
}

// Session returns the session store.
func (a *App) Session() *session.Store { return a.session }

// Client returns the configured pipeline client.
func (a *App) Client() *client.Client { return a.client }

// Service returns the typed API service.
func (a *App) Service() *api.Service { return a.service }

// Coordinator returns the redirect coordinator, for callback
// registration at application start.
func (a *App) Coordinator() *redirect.Coordinator { return a.coordinator }

// Refresher returns the refresher.
func (a *App) Refresher() *refresh.Refresher { return a.refresher }

// RegisterClose adds a shutdown step. A zero timeout uses the default.
func (a *App) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAlreadyClosed
	}
	if timeout == 0 {
		timeout = a.closeTimeout
	}

	a.closeFuncs = append(a.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Close runs every registered shutdown step concurrently and drops the
// redirect callbacks so timers cannot touch torn-down UI state.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrAlreadyClosed
	}
	a.closed = true
	closeFuncs := make([]CloseFunc, len(a.closeFuncs))
	copy(closeFuncs, a.closeFuncs)
	a.mu.Unlock()

	a.coordinator.ResetNavigation()
	a.coordinator.ResetToast()

	eg := &errgroup.Group{}
	for _, fn := range closeFuncs {
		eg.Go(func() error {
			return a.runClose(fn)
		})
	}

	if err := eg.Wait(); err != nil {
		a.logger.Error().Err(err).Msg("some close functions failed")
		return err
	}
	return nil
}

// runClose executes one shutdown step with its timeout; a panicking
// step is contained and reported as ErrClosePanic.
func (a *App) runClose(fn CloseFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), fn.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error().Interface("panic", r).Str("close", fn.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- fn.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			a.logger.Error().Err(err).Str("close", fn.Name).Msg("close function failed")
		}
		return err
	case <-ctx.Done():
		a.logger.Warn().Str("close", fn.Name).Msg("close function timed out")
		return ctx.Err()
	}
}

func buildMemory(*config.Settings) (store.Storage, func(context.Context) error, error) {
	return memory.New(), nil, nil
}

func buildFile(settings *config.Settings) (store.Storage, func(context.Context) error, error) {
	var opts []file.Option
	if pass := settings.Storage.File.Passphrase; pass != "" {
		key, err := file.DeriveKey([]byte(pass), []byte(settings.Storage.File.Path))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, file.WithEncryptionKey(key))
	}

	storage, err := file.New(settings.Storage.File.Path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return storage, nil, nil
}

func buildRedis(settings *config.Settings) (store.Storage, func(context.Context) error, error) {
	cfg := &redis.Config{
		Addrs:      settings.Storage.Redis.Addrs,
		MasterName: settings.Storage.Redis.MasterName,
		Username:   settings.Storage.Redis.Username,
		Password:   settings.Storage.Redis.Password,
		DB:         settings.Storage.Redis.DB,
		KeyPrefix:  settings.Storage.Redis.KeyPrefix,
	}

	storage, err := redis.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return storage, func(context.Context) error { return storage.Close() }, nil
}
