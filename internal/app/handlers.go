package app

import (
	httpH "github.com/yungbote/osteobridge-backend/internal/http/handlers"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type Handlers struct {
	Health         *httpH.HealthHandler
	Auth           *httpH.AuthHandler
	Organism       *httpH.OrganismHandler
	PDB            *httpH.PDBHandler
	ResearchImport *httpH.ResearchImportHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:         httpH.NewHealthHandler(),
		Auth:           httpH.NewAuthHandler(log, services.Auth),
		Organism:       httpH.NewOrganismHandler(log, services.Organism),
		PDB:            httpH.NewPDBHandler(log, services.PDB, cfg.MaxUploadBytes),
		ResearchImport: httpH.NewResearchImportHandler(log, services.ResearchImport),
	}
}
