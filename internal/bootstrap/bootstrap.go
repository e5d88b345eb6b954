// Package bootstrap wires the session store, the API clients, and the
// startup sequence together. Every command that talks to the backend
// builds an App first; protected commands additionally Run it so the
// persisted session is restored and silently refreshed before any
// guard decision is made.
package bootstrap

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/maisondecor/maison/internal/api"
	"github.com/maisondecor/maison/internal/config"
	"github.com/maisondecor/maison/internal/log"
	"github.com/maisondecor/maison/internal/session"
)

// App bundles the wired client-side components. Construct with New,
// start with Run.
type App struct {
	Store   *session.Store
	Gateway *api.Client
	Public  *api.PublicClient
	Logger  *log.Logger

	ran bool
}

// New builds the component graph. The two API clients share one
// http.Client with a cookie jar: the backend delivers the refresh
// credential as an HTTP-only cookie on login, and the jar replays it
// on the refresh call. No network traffic happens here.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpc := &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
	}

	public := api.NewPublicClient(cfg.APIURL, httpc, logger)
	gateway := api.NewClient(cfg.APIURL, httpc, logger)
	store := session.NewStore(
		&authBridge{public: public},
		session.NewFileStore(cfg.StorageDir),
		logger,
	)

	return &App{
		Store:   store,
		Gateway: gateway,
		Public:  public,
		Logger:  logger.With("component", "bootstrap"),
	}, nil
}

// Run performs the startup sequence in order: restore the persisted
// session, wire the gateway callbacks, then silently refresh when a
// token was restored. It always terminates with the store ready, no
// matter how the refresh went; a caller blocked on the route guard is
// therefore never stuck waiting. Run is idempotent.
func (a *App) Run(ctx context.Context) {
	if a.ran {
		return
	}
	a.ran = true
	defer a.Store.SetReady()

	a.Store.Restore()

	a.Gateway.SetCallbacks(
		a.Store.AccessToken,
		func(ctx context.Context) (string, error) {
			if err := a.Store.Refresh(ctx); err != nil {
				return "", err
			}
			return a.Store.AccessToken(), nil
		},
		func(ctx context.Context) {
			a.Store.Logout(ctx)
		},
	)
	a.Public.SetTokenFunc(a.Store.AccessToken)

	snap := a.Store.Snapshot()
	if snap.Session == nil || snap.Session.AccessToken == "" || snap.LoggedOut {
		a.Logger.Debug("no persisted session to refresh")
		return
	}

	if err := a.Store.Refresh(ctx); err != nil {
		// The restored session is stale or revoked. Settle into the
		// logged-out state so the guard redirects instead of looping.
		a.Logger.WithError(err).Warn("silent refresh failed, logging out")
		a.Store.Logout(ctx)
	}
}

// authBridge adapts the public API client to the store's AuthAPI. The
// store must not sit on the refreshing gateway or a failed refresh
// would recurse into itself.
type authBridge struct {
	public *api.PublicClient
}

func (b *authBridge) Login(ctx context.Context, email, password string) (session.Identity, string, error) {
	resp, err := b.public.Login(ctx, email, password)
	if err != nil {
		return session.Identity{}, "", err
	}
	return identityFromUser(resp.User), resp.AccessToken, nil
}

func (b *authBridge) RefreshToken(ctx context.Context) (session.Identity, string, error) {
	resp, err := b.public.RefreshToken(ctx)
	if err != nil {
		return session.Identity{}, "", err
	}
	var identity session.Identity
	if resp.User != nil {
		identity = identityFromUser(*resp.User)
	}
	return identity, resp.AccessToken, nil
}

func (b *authBridge) Logout(ctx context.Context) error {
	return b.public.Logout(ctx)
}

func identityFromUser(u api.User) session.Identity {
	return session.Identity{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Role:     u.Role,
	}
}
