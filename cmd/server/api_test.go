package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/hearthsim/go-ngdp/pkg/ngdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "abcd0000111122223333444455556666"

func newTestApp(t *testing.T, upstream http.Handler) (*fiber.App, *ngdp.Cache) {
	t.Helper()

	cdnServer := httptest.NewServer(upstream)
	t.Cleanup(cdnServer.Close)
	cdnHost := strings.TrimPrefix(cdnServer.URL, "http://")

	mux := http.NewServeMux()
	mux.HandleFunc("/cdns", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Name!STRING:0|Path!STRING:0|Hosts!STRING:0\neu|tpr/hs|%s\n", cdnHost)
	})
	patchServer := httptest.NewServer(mux)
	t.Cleanup(patchServer.Close)

	cache := ngdp.NewCache(t.TempDir())
	client := ngdp.New("hsb", "eu",
		ngdp.WithPatchHost(patchServer.URL),
		ngdp.WithCache(cache),
	)

	app := fiber.New()
	NewServer(client, slog.Default()).SetupRoutes(app)
	return app, cache
}

func TestHandleObjectFromCache(t *testing.T) {
	// Upstream rejects everything; a cached object must never reach it.
	app, cache := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream request %s", r.URL.Path)
	}))
	require.NoError(t, cache.Write("config", testHash, []byte("root = aaaa")))

	resp, err := app.Test(httptest.NewRequest("GET", "/config/ab/cd/"+testHash, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "root = aaaa", string(body))
}

func TestHandleObjectProxiesMiss(t *testing.T) {
	app, cache := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tpr/hs/patch/ab/cd/"+testHash, r.URL.Path)
		w.Write([]byte("patch-bytes"))
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/patch/ab/cd/"+testHash, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "patch-bytes", string(body))

	// The miss was cached on the way through.
	assert.True(t, cache.Contains("patch", testHash))
}

func TestHandleObjectUpstreamError(t *testing.T) {
	app, cache := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/config/ab/cd/"+testHash, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, cache.Contains("config", testHash))
}

func TestHandleObjectValidation(t *testing.T) {
	app, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream request %s", r.URL.Path)
	}))

	// Unknown namespace.
	resp, err := app.Test(httptest.NewRequest("GET", "/bogus/ab/cd/"+testHash, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Shard segments disagree with the object name.
	resp, err = app.Test(httptest.NewRequest("GET", "/config/ff/ee/"+testHash, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleStatus(t *testing.T) {
	app, _ := newTestApp(t, http.NotFoundHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
