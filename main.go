package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"pipepricing/collections"
	"pipepricing/commands"
	"pipepricing/config"
	"pipepricing/handlers"
	"pipepricing/metrics"
	"pipepricing/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()

	var registry *prometheus.Registry
	var registerer prometheus.Registerer
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registerer = registry
	}

	calc := &handlers.Calculator{
		Catalogs: services.NewCatalogProvider(app, cfg.CatalogPath, cfg.RequiredAttributes),
		Sessions: services.NewSessionStore(cfg.SessionTTL),
		Metrics:  metrics.NewPricingMetrics(registerer),
		Config:   cfg,
	}

	commands.Register(app.RootCmd, app, cfg)

	// Create collections on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateUploadSections(app); err != nil {
			log.Printf("Warning: upload sections migration failed: %v", err)
		}
		if cfg.SeedDemo {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		handlers.RegisterRoutes(se.Router, app, calc, registry)
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
