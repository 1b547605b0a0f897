// Package skilldeck wires the client-side engine for the learning platform:
// session storage, the auth gateway, the catalog cache, the authoring
// service and the enrollment synchronizer, all sharing one configured
// transport.
package skilldeck

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/skilldeck/skilldeck-go/api"
	"github.com/skilldeck/skilldeck-go/auth"
	"github.com/skilldeck/skilldeck-go/catalog"
	"github.com/skilldeck/skilldeck-go/enrollment"
	"github.com/skilldeck/skilldeck-go/platform/config"
	"github.com/skilldeck/skilldeck-go/platform/otel"
	"github.com/skilldeck/skilldeck-go/session"
	"github.com/skilldeck/skilldeck-go/storage/sqlite"
)

// serviceName identifies this client in trace exports.
const serviceName = "skilldeck-client"

// Config holds the environment-driven settings for the client engine.
// Learner and catalog traffic goes to BaseURL; course authoring is a
// separate deployment reached through AuthorBaseURL.
type Config struct {
	BaseURL       string        `env:"SKILLDECK_BASE_URL" envDefault:"http://localhost:8082"`
	AuthorBaseURL string        `env:"SKILLDECK_AUTHOR_BASE_URL" envDefault:"http://localhost:8080"`
	HTTPTimeout   time.Duration `env:"SKILLDECK_HTTP_TIMEOUT" envDefault:"10s"`
	TokenDB       string        `env:"SKILLDECK_TOKEN_DB" envDefault:"skilldeck.db"`
	LogLevel      string        `env:"SKILLDECK_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Client is the assembled engine. Construct it once per process and share
// it; every component is safe for concurrent use.
type Client struct {
	Sessions   *session.Store
	Auth       *auth.Gateway
	Catalog    *catalog.Cache
	Authoring  *catalog.AuthorService
	Enrollment *enrollment.Synchronizer

	store *sqlite.Store
}

// New assembles a client from the given configuration. It opens the token
// database but performs no network calls; the remote service is first
// contacted by Authenticate, ResumeSession or a catalog load.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	store, err := sqlite.Open(cfg.TokenDB)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	sessions := session.NewStore(store)
	mainAPI := api.NewClient(cfg.BaseURL, sessions, logger)
	authorAPI := api.NewClient(cfg.AuthorBaseURL, sessions, logger)
	if cfg.HTTPTimeout > 0 {
		hc := &http.Client{Timeout: cfg.HTTPTimeout}
		mainAPI.SetHTTPClient(hc)
		authorAPI.SetHTTPClient(hc)
	}

	cache := catalog.NewCache(mainAPI, logger)

	return &Client{
		Sessions:   sessions,
		Auth:       auth.NewGateway(mainAPI, authorAPI, sessions, logger),
		Catalog:    cache,
		Authoring:  catalog.NewAuthorService(authorAPI, logger),
		Enrollment: enrollment.NewSynchronizer(mainAPI, sessions, cache, logger),
		store:      store,
	}, nil
}

// ResumeSession restores a persisted token and re-resolves the identity
// behind it. It reports false without error when no token was persisted.
// On a resolution failure the token is kept in memory so the caller can
// retry; only an explicit Logout discards it.
func (c *Client) ResumeSession(ctx context.Context) (session.Session, bool, error) {
	token, ok, err := c.Sessions.Resume(ctx)
	if err != nil {
		return session.Session{}, false, err
	}
	if !ok {
		return session.Session{}, false, nil
	}

	role, err := c.Auth.ResolveRole(ctx, token)
	if err != nil {
		return session.Session{}, false, err
	}

	sess := session.Session{Token: token, Role: role}
	if err := c.Sessions.Set(ctx, sess); err != nil {
		return session.Session{}, false, err
	}
	return sess, true, nil
}

// Close releases the token database. The client must not be used after.
func (c *Client) Close() error {
	return c.store.Close()
}

// SetupTracing enables span export for every remote call the client makes.
// It is opt-in via SKILLDECK_OTEL_ENDPOINT; when unconfigured the returned
// shutdown is a no-op. Defer the shutdown to flush pending spans.
func SetupTracing(ctx context.Context) (func(context.Context) error, error) {
	return otel.Setup(ctx, serviceName)
}
