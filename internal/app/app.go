package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/booth/internal/apiclient"
	"github.com/five82/booth/internal/config"
	"github.com/five82/booth/internal/credstore"
	"github.com/five82/booth/internal/logging"
	"github.com/five82/booth/internal/market"
	"github.com/five82/booth/internal/prefs"
	"github.com/five82/booth/internal/session"
	"github.com/five82/booth/internal/state"
	"github.com/five82/booth/internal/studios"
	"github.com/five82/booth/internal/ui"
	"github.com/five82/booth/internal/upload"
)

// Options configure the booth application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/booth/prefs.toml
	PollEvery  int    // seconds; zero disables background refresh
}

// Services holds the wired clients and controllers.
type Services struct {
	Store    *state.Store
	Creds    credstore.Store
	Auth     *apiclient.Authenticator
	Session  *session.Controller
	Studios  *studios.Controller
	Uploader *upload.Uploader // nil when no image host is configured
}

// Wire builds both service clients around one authenticator, the state
// store seeded with the persisted access token, and the controllers. A
// failed token refresh expires the session.
func Wire(cfg config.Config, creds credstore.Store, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	common := []apiclient.Option{
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(logger),
	}

	refresher, err := apiclient.NewTokenRefresher(cfg.APIURL, common...)
	if err != nil {
		return nil, fmt.Errorf("init token refresher: %w", err)
	}
	auth := apiclient.NewAuthenticator(creds, refresher, logger)

	withAuth := append(append([]apiclient.Option(nil), common...), apiclient.WithAuthenticator(auth))
	authClient, err := apiclient.New(cfg.APIURL, withAuth...)
	if err != nil {
		return nil, fmt.Errorf("init auth client: %w", err)
	}
	studioClient, err := apiclient.New(cfg.StudioURL, withAuth...)
	if err != nil {
		return nil, fmt.Errorf("init studio client: %w", err)
	}

	token, _ := creds.AccessToken()
	store := state.NewStore(token)

	svc := &Services{
		Store:   store,
		Creds:   creds,
		Auth:    auth,
		Session: session.New(market.NewAuthAPI(authClient), store, creds, logger),
		Studios: studios.New(market.NewStudioAPI(studioClient), store, logger),
	}
	auth.OnSessionExpired(svc.Session.Expire)

	if cfg.ImageHost.Enabled() {
		svc.Uploader, err = upload.New(upload.Config{
			BaseURL:      cfg.ImageHost.BaseURL,
			CloudName:    cfg.ImageHost.CloudName,
			UploadPreset: cfg.ImageHost.UploadPreset,
			Timeout:      cfg.RequestTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init image uploader: %w", err)
		}
	}
	return svc, nil
}

// Run boots the booth TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{
		Path:   cfg.LogPath,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	creds, err := credstore.Open(cfg.CredentialsPath)
	if err != nil {
		return fmt.Errorf("open credentials: %w", err)
	}

	svc, err := Wire(cfg, creds, logger)
	if err != nil {
		return err
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)
	filters := newFilterBox(userPrefs.Filters)

	if opts.PollEvery > 0 {
		StartPoller(ctx, svc.Store, svc.Studios, filters.Get, time.Duration(opts.PollEvery)*time.Second, logger)
	}

	logger.Info("booth starting",
		"api_url", cfg.APIURL,
		"studio_url", cfg.StudioURL,
		"authenticated", svc.Store.Snapshot().Session.Authenticated(),
		"uploads", svc.Uploader != nil,
	)

	uiOpts := ui.Options{
		Context:   ctx,
		Store:     svc.Store,
		Session:   svc.Session,
		Studios:   svc.Studios,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		OnFilters: filters.Set,
		LogPath:   cfg.LogPath,
		Logger:    logger,
	}
	if svc.Uploader != nil {
		uiOpts.Uploader = svc.Uploader
	}
	return ui.Run(uiOpts)
}

// filterBox shares the list filters chosen in the UI with the poller.
type filterBox struct {
	mu      sync.Mutex
	filters market.StudioFilters
}

func newFilterBox(f market.StudioFilters) *filterBox {
	return &filterBox{filters: f}
}

func (b *filterBox) Get() market.StudioFilters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

func (b *filterBox) Set(f market.StudioFilters) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = f
}
