package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/osteobridge-backend/internal/modules/researchimport"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	Organism       services.OrganismService
	PDB            services.PDBService
	ResearchImport services.ResearchImportService
}

// NewImportCoordinator builds the import engine over the catalog repos, with
// options overlaid from cfg.ImportConfigPath.
func NewImportCoordinator(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (*researchimport.Coordinator, error) {
	opts, err := researchimport.LoadOptions(cfg.ImportConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load import options: %w", err)
	}
	return researchimport.NewCoordinator(researchimport.Deps{
		DB:           db,
		Log:          log,
		Proteins:     reposet.Protein,
		Compounds:    reposet.Compound,
		Organisms:    reposet.Organism,
		Stages:       reposet.ClinicalStage,
		ResearchData: reposet.ResearchData,
	}, opts), nil
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	coordinator, err := NewImportCoordinator(db, log, cfg, reposet)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Auth: services.NewAuthService(
			db, log,
			reposet.User,
			reposet.TokenBlocklist,
			cfg.JWTSecretKey,
			cfg.AccessTokenTTL,
		),
		Organism: services.NewOrganismService(
			log,
			reposet.ClinicalStage,
			reposet.Organism,
			reposet.ResearchData,
			reposet.OrganismRating,
			clients.ListingCache,
		),
		PDB: services.NewPDBService(
			log,
			reposet.Protein,
			reposet.Compound,
			reposet.MolecularModel,
			clients.Blobs,
		),
		ResearchImport: services.NewResearchImportService(
			log,
			coordinator,
			reposet.ImportRun,
			clients.ListingCache,
			metrics,
			cfg.MaxUploadBytes,
		),
	}, nil
}
