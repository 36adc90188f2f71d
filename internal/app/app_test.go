package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/bookcatalog/internal/config"
)

const testSecret = "YXBwLXRlc3Qtc2lnbmluZy1rZXk="

func newTestApp(t *testing.T, args ...string) *App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	theApp, err := New(config.WithArgs(args))
	require.NoError(t, err)
	t.Cleanup(theApp.Close)

	return theApp
}

func TestNewWiresHandler(t *testing.T) {
	theApp := newTestApp(t, "-a", "127.0.0.1:18437", "-cost", "4")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	theApp.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	_, err := New(config.WithArgs([]string{"-t", "not-a-cidr"}))
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	theApp := newTestApp(t, "-a", "127.0.0.1:18438")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, theApp.Serve(ctx))
}

func TestNewRequiresSigningSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := New(config.WithArgs([]string{"-a", "127.0.0.1:18439"}))
	assert.Error(t, err)
}
