package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"

	auctionstore "givekindly/internal/auction/store"
	assignmentstore "givekindly/internal/donation/store/assignment"
	donationstore "givekindly/internal/donation/store/donation"
	balancestore "givekindly/internal/escrow/store/balance"
	payoutstore "givekindly/internal/escrow/store/payout"
	identitystore "givekindly/internal/identity/store"
	jwttoken "givekindly/internal/jwt_token"
	"givekindly/internal/ledger/handler"
	ledgermetrics "givekindly/internal/ledger/metrics"
	"givekindly/internal/ledger/service"
	"givekindly/internal/outbox"
	"givekindly/internal/platform/config"
	"givekindly/internal/platform/kafka"
	"givekindly/internal/platform/metrics"
	"givekindly/internal/platform/middleware"
	"givekindly/internal/platform/postgres"
	"givekindly/internal/platform/redis"
	"givekindly/pkg/platform/audit"
	"givekindly/pkg/platform/audit/publisher"
	auditmemory "givekindly/pkg/platform/audit/store/memory"
	auditpostgres "givekindly/pkg/platform/audit/store/postgres"
	"givekindly/pkg/platform/httputil"
	"givekindly/pkg/platform/idempotency"
	"givekindly/pkg/platform/middleware/admin"
	"givekindly/pkg/platform/middleware/metadata"
	"givekindly/pkg/platform/middleware/requesttime"
)

// application holds the wired process and the resources it must release.
type application struct {
	router  http.Handler
	relay   *outbox.Relay
	storage string

	db       *sql.DB
	redis    *redis.Client
	producer *kgo.Client
}

func (a *application) Close() {
	if a.producer != nil {
		a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger, reg *metrics.Registry) (*application, error) {
	app := &application{storage: "memory"}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	var (
		stores     service.Stores
		tx         service.StoreTx
		auditStore audit.Store
	)
	if cfg.Database.URL == "" {
		stores = service.Stores{
			Actors:      identitystore.NewInMemory(),
			Donations:   donationstore.NewInMemory(),
			Assignments: assignmentstore.NewInMemory(),
			Slot:        auctionstore.NewInMemory(),
			Escrow:      balancestore.NewInMemory(),
			Payouts:     payoutstore.NewRecordingDisburser(),
		}
		tx = service.NewInMemoryTx(cfg.Ledger.TxTimeout)
		auditStore = auditmemory.NewInMemoryStore()
	} else {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.storage = "postgres"
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, err
		}
		stores = service.Stores{
			Actors:      identitystore.NewPostgres(db),
			Donations:   donationstore.NewPostgres(db),
			Assignments: assignmentstore.NewPostgres(db),
			Slot:        auctionstore.NewPostgres(db),
			Escrow:      balancestore.NewPostgres(db),
			Payouts:     payoutstore.NewPostgresJournal(db),
		}
		tx = newLedgerPostgresTx(db, cfg.Ledger.TxTimeout)
		auditStore = auditpostgres.New(db)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(ledgermetrics.New(reg)),
		service.WithTracer(otel.Tracer("givekindly/internal/ledger")),
		service.WithAuditPublisher(publisher.New(auditStore,
			publisher.WithLogger(log),
			publisher.WithMetrics(publisher.NewMetrics(reg)),
		)),
	}
	if cfg.Ledger.EmptyWithdrawal == config.EmptyWithdrawalError {
		opts = append(opts, service.WithStrictWithdrawals())
	}
	ledger, err := service.New(stores, tx, opts...)
	if err != nil {
		return nil, err
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	var idem idempotency.Store = idempotency.NewInMemoryStore()
	if redisClient != nil {
		app.redis = redisClient
		idem = idempotency.NewRedisStore(redisClient.Client)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka)
		if err != nil {
			return nil, err
		}
		app.producer = producer
		if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka.AuditTopic, 3); err != nil {
			return nil, err
		}
		app.relay = outbox.NewRelay(app.db, producer, cfg.Kafka.AuditTopic,
			outbox.WithInterval(cfg.Kafka.RelayInterval),
			outbox.WithBatchSize(cfg.Kafka.RelayBatch),
			outbox.WithLogger(log),
			outbox.WithMetrics(outbox.NewMetrics(reg)),
		)
	}

	jwt := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	app.router = newRouter(app, ledger, jwt, idem, cfg, log, reg)
	ok = true
	return app, nil
}

func newRouter(app *application, ledger *service.Service, jwt *jwttoken.JWTService, idem idempotency.Store, cfg config.Server, log *slog.Logger, reg *metrics.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(log))

	r.Get("/health", app.handleHealth)
	r.With(admin.RequireAdminToken(cfg.AdminToken, log)).Handle("/metrics", reg.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwt, log))
		r.Use(idempotency.Middleware(idem, cfg.Ledger.IdempotencyTTL, log))
		handler.New(ledger, log).Register(r)
	})
	return r
}

type healthResponse struct {
	Status  string            `json:"status"`
	Storage string            `json:"storage"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (a *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := healthResponse{Status: "ok", Storage: a.storage, Checks: map[string]string{}}
	check := func(name string, err error) {
		if err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			return
		}
		resp.Checks[name] = "ok"
	}
	if a.db != nil {
		check("postgres", a.db.PingContext(ctx))
	}
	if a.redis != nil {
		check("redis", a.redis.Health(ctx))
	}
	if a.producer != nil {
		check("kafka", a.producer.Ping(ctx))
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

