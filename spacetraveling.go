// Package spacetraveling is a blog front-end for posts kept in a Prismic
// repository. Pages are generated from the CMS, kept in a page cache with a
// per-route TTL, regenerated on stale access and served with Echo. The same
// pages can be exported to a directory for static hosting.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/i18n"
	"github.com/eringen/spacetraveling/pagecache"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// App is the central spacetraveling application. It wires together the post
// source, page cache, handlers, middleware and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Source content.Source
	Cache  *pagecache.Cache
	Logger *slog.Logger

	backend      pagecache.Backend
	locale       *i18n.Locale
	limiter      *RateLimiter
	warmer       *cron.Cron
	customRoutes []func(*App)

	initOnce   sync.Once
	initErr    error
	serverOnce sync.Once
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	a.locale = i18n.Match(cfg.Locale)
	return a
}

// Init connects the post source and opens the page cache. Start and Export
// call it; it only does the work once.
func (a *App) Init() error {
	a.initOnce.Do(func() {
		a.initErr = a.init()
	})
	return a.initErr
}

func (a *App) init() error {
	if a.Source == nil {
		if a.Config.PrismicEndpoint == "" {
			return errors.New("spacetraveling: PrismicEndpoint is required")
		}
		client, err := prismic.New(a.Config.PrismicEndpoint, prismic.Options{
			AccessToken: a.Config.PrismicAccessToken,
		})
		if err != nil {
			return fmt.Errorf("spacetraveling: init prismic client: %w", err)
		}
		a.Source = content.NewPrismicSource(client)
	}

	if a.backend == nil {
		backend, err := openBackend(a.Config)
		if err != nil {
			return fmt.Errorf("spacetraveling: init page cache: %w", err)
		}
		a.backend = backend
	}
	a.Cache = pagecache.New(a.backend, pagecache.Options{
		Logger:          a.Logger.With("component", "pagecache"),
		GenerateTimeout: a.Config.GenerateTimeout,
	})
	return nil
}

// Start initializes the app, pre-renders the listing and the enumerated
// posts, and serves HTTP until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("spacetraveling: SessionSecret is required")
	}
	if err := a.Init(); err != nil {
		return err
	}
	a.setupServer()

	if err := a.Prerender(ctx); err != nil {
		return fmt.Errorf("spacetraveling: prerender: %w", err)
	}
	if err := a.startWarmer(); err != nil {
		return fmt.Errorf("spacetraveling: start warmer: %w", err)
	}

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", "addr", a.Config.Addr)
		errc <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger.Info("shutting down")
		return a.Echo.Shutdown(shutdownCtx)
	}
}

// setupServer installs middleware and routes once.
func (a *App) setupServer() {
	a.serverOnce.Do(func() {
		a.limiter = NewRateLimiter(a.Config.LoadMoreLimit, time.Minute)
		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/public/*", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))))
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/posts/more/", a.handleLoadMore)

	e.GET("/api/posts/", a.handleAPIPosts)
	e.GET("/api/preview/", a.handlePreview)
	e.POST("/api/exit-preview/", a.handleExitPreview)
}

// Close stops background work and releases the page cache. Call this when
// the app is shutting down.
func (a *App) Close() error {
	if a.warmer != nil {
		<-a.warmer.Stop().Done()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Cache != nil {
		return a.Cache.Close()
	}
	if a.backend != nil {
		return a.backend.Close()
	}
	return nil
}

// site returns the settings every view receives.
func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Locale:      a.locale,
	}
}
