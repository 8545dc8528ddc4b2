package viaplay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/config"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/storage"
)

type testEnv struct {
	client *Client
	store  *storage.Storage
	server *httptest.Server
	cfg    *config.Config
}

func testEndpoints(base string) Endpoints {
	return Endpoints{
		Content: base + "/content",
		Login:   base + "/login",
		Play:    base + "/play",
		EPG:     base + "/epg",
		Profile: base + "/profile",
	}
}

func newTestEnv(t *testing.T, handler http.Handler, mutate func(*config.Config), opts ...Option) *testEnv {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.SettingsDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	store, err := storage.New(cfg.SettingsDir)
	require.NoError(t, err)

	opts = append([]Option{WithEndpoints(testEndpoints(srv.URL))}, opts...)
	client, err := NewClient(cfg, store, opts...)
	require.NoError(t, err)

	return &testEnv{client: client, store: store, server: srv, cfg: cfg}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

const persistentLoginOK = `{"success":true,"userData":{"userId":"u-1","accessToken":"tok"}}`

func TestParseURLStripsTemplates(t *testing.T) {
	tests := map[string]string{
		"https://content.viaplay.se/androiddash-se/serier{?dtg}":      "https://content.viaplay.se/androiddash-se/serier",
		"https://content.viaplay.se/xdk-se/sok{?query}/x{&from,to}/y": "https://content.viaplay.se/xdk-se/sok/x/y",
		"https://content.viaplay.se/xdk-se/film":                      "https://content.viaplay.se/xdk-se/film",
		"https://a/{}b":                                               "https://a/{}b",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseURL(in), in)
	}
}

func TestMakeRequestRetriesOnceAfterValidation(t *testing.T) {
	var dataCalls, validateCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/content/data", func(w http.ResponseWriter, r *http.Request) {
		if dataCalls.Add(1) == 1 {
			writeJSON(w, `{"success":false,"name":"MissingSessionCookieError"}`)
			return
		}
		writeJSON(w, `{"type":"page","title":"ok"}`)
	})
	mux.HandleFunc("/login/persistentLogin/v1", func(w http.ResponseWriter, r *http.Request) {
		validateCalls.Add(1)
		assert.Equal(t, "xdk-se", r.URL.Query().Get("deviceKey"))
		writeJSON(w, persistentLoginOK)
	})

	env := newTestEnv(t, mux, nil)
	resp, err := env.client.Get(context.Background(), env.server.URL+"/content/data", nil)
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Data.String("title"))
	assert.Equal(t, int32(2), dataCalls.Load())
	assert.Equal(t, int32(1), validateCalls.Load())
	assert.Equal(t, StateAuthenticated, env.client.State())

	id, token := env.client.Session().User()
	assert.Equal(t, "u-1", id)
	assert.Equal(t, "tok", token)
}

func TestMakeRequestSecondFailurePropagates(t *testing.T) {
	var dataCalls, validateCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/content/data", func(w http.ResponseWriter, r *http.Request) {
		dataCalls.Add(1)
		writeJSON(w, `{"success":false,"name":"ContentNotAvailable"}`)
	})
	mux.HandleFunc("/login/persistentLogin/v1", func(w http.ResponseWriter, r *http.Request) {
		validateCalls.Add(1)
		writeJSON(w, persistentLoginOK)
	})

	env := newTestEnv(t, mux, nil)
	_, err := env.client.Get(context.Background(), env.server.URL+"/content/data", nil)
	require.Error(t, err)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ContentNotAvailable", se.Name)
	assert.Equal(t, int32(2), dataCalls.Load())
	assert.Equal(t, int32(1), validateCalls.Load())
}

func TestMakeRequestValidationFailureStopsRetry(t *testing.T) {
	var dataCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/content/data", func(w http.ResponseWriter, r *http.Request) {
		dataCalls.Add(1)
		writeJSON(w, `{"success":false,"name":"SomeError"}`)
	})
	mux.HandleFunc("/login/persistentLogin/v1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":false,"name":"PersistentLoginError"}`)
	})

	env := newTestEnv(t, mux, nil)
	_, err := env.client.Get(context.Background(), env.server.URL+"/content/data", nil)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "PersistentLoginError", se.Name)
	assert.Equal(t, int32(1), dataCalls.Load())
	assert.Equal(t, StateFailed, env.client.State())
}

func TestMakeRequestTransportErrorIsNotRetried(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler(), nil)
	url := env.server.URL + "/content/data"
	env.server.Close()

	_, err := env.client.Get(context.Background(), url, nil)
	require.Error(t, err)
	assert.False(t, IsServiceError(err))
	assert.Equal(t, StateUnauthenticated, env.client.State())
}

func TestMakeRequestInjectsProfileAndStripsTemplate(t *testing.T) {
	var gotPath, gotProfile, gotQuery string

	mux := http.NewServeMux()
	mux.HandleFunc("/content/serier", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotProfile = r.URL.Query().Get("profileId")
		gotQuery = r.URL.Query().Get("query")
		writeJSON(w, `{"type":"page"}`)
	})

	env := newTestEnv(t, mux, func(c *config.Config) { c.ProfileID = "profile-7" })
	params := map[string]string{"query": "bron"}
	_, err := env.client.Get(context.Background(), env.server.URL+"/content/serier{?dtg}", params)
	require.NoError(t, err)

	assert.Equal(t, "/content/serier", gotPath)
	assert.Equal(t, "profile-7", gotProfile)
	assert.Equal(t, "bron", gotQuery)
	assert.Len(t, params, 1, "caller params must not be mutated")
}

func TestMakeRequestFormEncodesPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/content/form", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "abc", r.Header.Get("X-Test"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "v", r.PostForm.Get("k"))
		writeJSON(w, `{}`)
	})

	env := newTestEnv(t, mux, nil)
	_, err := env.client.MakeRequest(context.Background(), Request{
		URL:     env.server.URL + "/content/form",
		Method:  MethodPost,
		Payload: map[string]string{"k": "v"},
		Headers: map[string]string{"X-Test": "abc"},
	})
	require.NoError(t, err)

	_, err = env.client.MakeRequest(context.Background(), Request{URL: env.server.URL, Method: "delete"})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestCookiesArePersistedAndRestored(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/persistentLogin/v1", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SESS", Value: "abc", Path: "/"})
		writeJSON(w, persistentLoginOK)
	})
	mux.HandleFunc("/content/echo", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("SESS")
		if err != nil {
			writeJSON(w, `{"cookie":""}`)
			return
		}
		writeJSON(w, fmt.Sprintf(`{"cookie":%q}`, c.Value))
	})

	env := newTestEnv(t, mux, nil)
	require.NoError(t, env.client.ValidateSession(context.Background()))
	assert.True(t, env.store.HasSession())

	restored, err := NewClient(env.cfg, env.store, WithEndpoints(testEndpoints(env.server.URL)))
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, restored.State())

	resp, err := restored.Get(context.Background(), env.server.URL+"/content/echo", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Data.String("cookie"))
}

func TestRequestsSaveCookiesEvenOnServiceError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/persistentLogin/v1", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SESS", Value: "x", Path: "/"})
		writeJSON(w, `{"success":false,"name":"PersistentLoginError"}`)
	})

	env := newTestEnv(t, mux, nil)
	err := env.client.ValidateSession(context.Background())
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(env.cfg.SettingsDir, storage.CookieFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "SESS\tx")
}

func TestEndpointsFor(t *testing.T) {
	cfg := config.Default()
	cfg.Country = "gb"
	e := EndpointsFor(cfg)
	assert.Equal(t, "https://content.viaplay.com/xdk-gb", e.Content)
	assert.Equal(t, "https://login.viaplay.com/api", e.Login)
	assert.Equal(t, "https://play.viaplay.com/api", e.Play)
	assert.Equal(t, "https://epg.viaplay.com/xdk-gb", e.EPG)
	assert.Equal(t, "https://viaplay.mtg-api.com", e.Profile)

	cfg.Country = "se"
	assert.Equal(t, "https://login.viaplay.se/api", EndpointsFor(cfg).Login)
}

func TestChannelsURL(t *testing.T) {
	for cc, page := range map[string]string{"se": "kanaler", "fi": "kanavat", "pl": "kanaly", "gb": "channels"} {
		cfg := config.Default()
		cfg.Country = cc
		store, err := storage.New(t.TempDir())
		require.NoError(t, err)
		c, err := NewClient(cfg, store)
		require.NoError(t, err)
		assert.Equal(t, EndpointsFor(cfg).Content+"/"+page, c.ChannelsURL())
		assert.Equal(t, "xdk-"+cc, c.DeviceKey())
	}
}

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}
