// Command discovrr serves the client state core over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discovrr/internal/bootstrap"
	"discovrr/internal/config"
	"discovrr/internal/observability"
	"discovrr/internal/seed"
	"discovrr/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	seedDemo := flag.Bool("seed-demo", false, "Seed demo data into an empty database")
	resume := flag.Bool("resume", true, "Revalidate a persisted session on startup")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "discovrr",
		ServiceVersion: cfg.AppVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		SeedDemo: *seedDemo && !cfg.IsProduction(),
		Seed: seed.Options{
			NumProfiles:         20,
			NumPosts:            60,
			NumMerchants:        5,
			ProductsPerMerchant: 4,
		},
		PersistDebounce: 250 * time.Millisecond,
		ResumeSession:   *resume,
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv := server.NewServer(cfg, rt)

	app := fiber.New(server.AppConfig())
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
		if err := rt.Shutdown(ctx); err != nil {
			log.Printf("Runtime shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
