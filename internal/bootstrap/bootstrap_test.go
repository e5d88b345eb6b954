package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisondecor/maison/internal/config"
	"github.com/maisondecor/maison/internal/log"
	"github.com/maisondecor/maison/internal/session"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: io.Discard})
}

func testConfig(t *testing.T, apiURL string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.APIURL = apiURL
	cfg.StorageDir = t.TempDir()
	return cfg
}

func seedSession(t *testing.T, dir string) {
	t.Helper()
	fs := session.NewFileStore(dir)
	require.NoError(t, fs.Save(&session.Session{
		Identity:    session.Identity{ID: "u-1", UserName: "Lena", Email: "lena@maison.test", Role: session.RoleAdmin},
		AccessToken: "stale-token",
	}))
}

func TestRunWithoutPersistedSession(t *testing.T) {
	refreshCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		t.Errorf("unexpected request %s during anonymous bootstrap", r.URL.Path)
	}))
	defer srv.Close()

	app, err := New(testConfig(t, srv.URL), quietLogger())
	require.NoError(t, err)
	app.Run(context.Background())

	st := app.Store.Snapshot()
	assert.True(t, st.Ready)
	assert.False(t, st.Authenticated)
	assert.Zero(t, refreshCalls, "anonymous startup must stay off the network")
}

func TestRunRefreshesRestoredSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh-token", r.URL.Path)
		fmt.Fprint(w, `{"accessToken":"fresh-token"}`)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	seedSession(t, cfg.StorageDir)

	app, err := New(cfg, quietLogger())
	require.NoError(t, err)
	app.Run(context.Background())

	st := app.Store.Snapshot()
	assert.True(t, st.Ready)
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.Session)
	assert.Equal(t, "fresh-token", st.Session.AccessToken)
	assert.Equal(t, "lena@maison.test", st.Session.Identity.Email, "identity survives a token-only refresh")
}

func TestRunEndsReadyWhenRefreshFails(t *testing.T) {
	// A revoked refresh credential must settle into ready, logged out.
	// Getting stuck not-ready would leave every guard waiting forever.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Invalid refresh token."}`)
		case "/auth/logout":
			fmt.Fprint(w, `{}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	seedSession(t, cfg.StorageDir)

	app, err := New(cfg, quietLogger())
	require.NoError(t, err)
	app.Run(context.Background())

	st := app.Store.Snapshot()
	assert.True(t, st.Ready)
	assert.False(t, st.Authenticated)
	assert.True(t, st.LoggedOut)
	assert.Nil(t, st.Session)

	loaded, err := session.NewFileStore(cfg.StorageDir).Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "the stale session must not be restored again next run")
}

func TestRunIsIdempotent(t *testing.T) {
	refreshCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		fmt.Fprint(w, `{"accessToken":"fresh-token"}`)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	seedSession(t, cfg.StorageDir)

	app, err := New(cfg, quietLogger())
	require.NoError(t, err)
	app.Run(context.Background())
	app.Run(context.Background())

	assert.Equal(t, 1, refreshCalls)
}

func TestGatewayRecoversFromExpiryThroughStore(t *testing.T) {
	// End-to-end: a protected request hits a 401, the gateway drives the
	// store's refresh through the wired callbacks, and the retry carries
	// the new token.
	refreshCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			refreshCalls++
			fmt.Fprintf(w, `{"accessToken":"tok-%d"}`, refreshCalls)
		case "/products/get":
			// tok-1 came out of the startup refresh and has since
			// expired; only the second-generation token is accepted.
			if r.Header.Get("Authorization") != "Bearer tok-2" {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"message":"jwt expired"}`)
				return
			}
			fmt.Fprint(w, `{"data":[{"_id":"p-1","title":"Oak Table","price":799}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	seedSession(t, cfg.StorageDir)

	app, err := New(cfg, quietLogger())
	require.NoError(t, err)
	app.Run(context.Background())
	require.Equal(t, "tok-1", app.Store.AccessToken())

	products, err := app.Gateway.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Oak Table", products[0].Title)
	assert.Equal(t, "tok-2", app.Store.AccessToken(), "the refreshed token lands back in the store")
	assert.Equal(t, 2, refreshCalls)
}
