package app

import (
	httpx "github.com/yungbote/osteobridge-backend/internal/http"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) httpx.RouterConfig {
	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}
	return httpx.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		MetricsEnabled: cfg.MetricsEnabled,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,

		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,

		OrganismHandler:       handlers.Organism,
		PDBHandler:            handlers.PDB,
		ResearchImportHandler: handlers.ResearchImport,

		HealthHandler: handlers.Health,
	}
}
