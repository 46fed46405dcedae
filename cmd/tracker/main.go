// cmd/tracker/main.go
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"shelfwatch/internal/clients"
	"shelfwatch/internal/config"
	"shelfwatch/internal/digest"
	"shelfwatch/internal/reconcile"
	"shelfwatch/internal/tracking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	if cfg.OTLPEndpoint != "" {
		shutdown, err := setupTracing(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("Failed to set up tracing: %v", err)
		}
		defer shutdown(ctx)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := tracking.NewPostgresStore(db)
	catalogClient := clients.NewCatalogClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	var mailer *clients.MailerClient
	if cfg.Mailer.Enabled() {
		mailer = clients.NewMailerClient(cfg.Mailer.Endpoint, cfg.Mailer.APIKey, cfg.Mailer.From, cfg.Mailer.Timeout)
	}

	var changeNotifier reconcile.Notifier
	var digestNotifier digest.Notifier
	if mailer != nil {
		changeNotifier = mailer
		digestNotifier = mailer
	}

	runner := reconcile.NewService(store, catalogClient, changeNotifier, cfg.Mailer.Recipient, cfg.CheckDelay)
	digestService := digest.NewService(store, digestNotifier, cfg.Mailer.Recipient)

	reconcileHandler := reconcile.NewHandler(runner)
	digestHandler := digest.NewHandler(digestService)
	trackingHandler := tracking.NewHandler(store)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Post("/v1/checks", reconcileHandler.HandleRunNow)
	router.Post("/v1/digests", digestHandler.HandleSendNow)
	router.Patch("/v1/books/{id}/status", trackingHandler.HandleSetStatus)

	log.Printf("Tracker listening on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, router))
}

func setupTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("shelfwatch"),
		)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
