package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givekindly/internal/platform/config"
	"givekindly/internal/platform/metrics"
	"givekindly/pkg/testutil"
)

func memoryConfig() config.Server {
	return config.Server{
		Addr: ":0",
		JWT:  config.JWTConfig{SigningKey: "k", Issuer: "givekindly", Audience: "givekindly-ledger"},
		Ledger: config.LedgerConfig{
			TxTimeout:       time.Second,
			EmptyWithdrawal: config.EmptyWithdrawalError,
			IdempotencyTTL:  time.Hour,
		},
	}
}

func TestBuildInMemory(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := build(context.Background(), memoryConfig(), log, metrics.New())
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "memory", app.storage)
	assert.Nil(t, app.relay, "no brokers means no relay")

	t.Run("health needs no token", func(t *testing.T) {
		rr := testutil.DoRequest(app.router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		rr := testutil.DoRequest(app.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), "go_goroutines")
	})

	t.Run("metrics honour the admin token", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.AdminToken = "ops"
		guarded, err := build(context.Background(), cfg, log, metrics.New())
		require.NoError(t, err)
		defer guarded.Close()

		rr := testutil.DoRequest(guarded.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")

		req := testutil.NewRequest(t, http.MethodGet, "/metrics")
		req.Header.Set("X-Admin-Token", "ops")
		testutil.AssertStatusOK(t, testutil.DoRequest(guarded.router, req))
	})

	t.Run("ledger routes require a bearer token", func(t *testing.T) {
		rr := testutil.DoRequest(app.router, testutil.NewRequest(t, http.MethodGet, "/stats"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("request ids are echoed", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/health")
		req.Header.Set("X-Request-ID", "req-123")
		rr := testutil.DoRequest(app.router, req)
		assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
	})
}
