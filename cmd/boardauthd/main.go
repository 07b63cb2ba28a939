package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/boardkit/auth"
	"github.com/boardkit/auth/middleware/jwtware"
	"github.com/boardkit/auth/provider/google"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := auth.LoadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	federated, closeFederated, err := buildFederatedVerifier(cfg)
	if err != nil {
		return err
	}
	defer closeFederated()

	registry := prometheus.NewRegistry()
	sink := auth.NewMetricsSink(registry)

	auther := auth.NewAuthenticator(repo.Accounts(), federated, cfg).
		WithActivitySink(sink)

	app := fiber.New()

	app.Use(jwtware.New(jwtware.Config{
		Validator:      auther.TokenService(),
		ContextKey:     cfg.GetContextKey(),
		AuthScheme:     cfg.GetAuthScheme(),
		ExemptPrefixes: cfg.GetExemptPrefixes(),
	}))

	auth.RegisterAuthRoutes(app,
		auth.WithAuthenticator(auther),
		auth.WithAccountStore(repo.Accounts()),
	)

	go serveMetrics(registry, cfg.MetricsAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		errs <- app.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errs:
		return err
	case <-quit:
		log.Println("shutting down")
		return app.Shutdown()
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*auth.Account)(nil)).
		IfNotExists().
		Exec(context.Background()); err != nil {
		return nil, err
	}

	return db, nil
}

func buildFederatedVerifier(cfg *auth.EnvConfig) (auth.FederatedVerifier, func(), error) {
	if cfg.GetGoogleClientID() == "" {
		log.Println("no Google client ID configured, federated sign-in disabled")
		return disabledVerifier{}, func() {}, nil
	}

	verifier, err := google.NewVerifier(google.Config{
		ClientID: cfg.GetGoogleClientID(),
		JWKSURL:  cfg.GetGoogleJWKSURL(),
	})
	if err != nil {
		return nil, nil, err
	}

	return verifier, verifier.Close, nil
}

func serveMetrics(registry *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics listener stopped: %v", err)
	}
}

// disabledVerifier rejects every federated token; wired when no provider
// client ID is configured.
type disabledVerifier struct{}

func (disabledVerifier) Verify(context.Context, string) (*auth.FederatedClaims, error) {
	return nil, auth.ErrInvalidFederatedToken
}
