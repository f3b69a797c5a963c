package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type Repos struct {
	User           repos.UserRepo
	TokenBlocklist repos.TokenBlocklistRepo

	Protein        repos.ProteinRepo
	Compound       repos.CompoundRepo
	Organism       repos.OrganismRepo
	ClinicalStage  repos.ClinicalStageRepo
	ResearchData   repos.ResearchDataRepo
	MolecularModel repos.MolecularModelRepo

	OrganismRating repos.OrganismRatingRepo
	ImportRun      repos.ImportRunRepo
}

func NewRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		TokenBlocklist: repos.NewTokenBlocklistRepo(db, log),

		Protein:        repos.NewProteinRepo(db, log),
		Compound:       repos.NewCompoundRepo(db, log),
		Organism:       repos.NewOrganismRepo(db, log),
		ClinicalStage:  repos.NewClinicalStageRepo(db, log),
		ResearchData:   repos.NewResearchDataRepo(db, log),
		MolecularModel: repos.NewMolecularModelRepo(db, log),

		OrganismRating: repos.NewOrganismRatingRepo(db, log),
		ImportRun:      repos.NewImportRunRepo(db, log),
	}
}
