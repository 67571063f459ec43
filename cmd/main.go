package main

import (
	"log"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/janus/internal/adapter"
	"github.com/davidbz/janus/internal/config"
	"github.com/davidbz/janus/internal/httpserver"
	"github.com/davidbz/janus/internal/httpserver/middleware"
	"github.com/davidbz/janus/internal/observability"
	"github.com/davidbz/janus/internal/translate"
	"github.com/davidbz/janus/internal/upstream"
)

func main() {
	container := buildContainer()

	// Requesting the logger here forces its initialization before traffic.
	err := container.Invoke(func(server *httpserver.Server, _ *zap.Logger) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Upstream provider client
	if err := container.Provide(upstream.NewClient); err != nil {
		log.Fatalf("Failed to provide upstream client: %v", err)
	}
	if err := container.Provide(func(client *upstream.Client) adapter.UpstreamClient {
		return client
	}); err != nil {
		log.Fatalf("Failed to bind upstream client: %v", err)
	}

	// Translation options derived from upstream config
	if err := container.Provide(func(cfg *upstream.Config) translate.Options {
		return translate.Options{
			DefaultEffort:   cfg.ReasoningEffort,
			SummaryLevel:    cfg.SummaryLevel,
			Truncation:      cfg.Truncation,
			ExposeReasoning: cfg.ReasoningVisibility == translate.VisibilityExposed,
		}
	}); err != nil {
		log.Fatalf("Failed to provide translate options: %v", err)
	}

	// Adapter service
	if err := container.Provide(adapter.NewService); err != nil {
		log.Fatalf("Failed to provide adapter service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(httpserver.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(httpserver.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
