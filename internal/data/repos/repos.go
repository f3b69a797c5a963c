package repos

import (
	"github.com/yungbote/osteobridge-backend/internal/data/repos/auth"
	"github.com/yungbote/osteobridge-backend/internal/data/repos/catalog"
	"github.com/yungbote/osteobridge-backend/internal/data/repos/imports"
	"github.com/yungbote/osteobridge-backend/internal/data/repos/reviews"
	"github.com/yungbote/osteobridge-backend/internal/data/repos/user"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type TokenBlocklistRepo = auth.TokenBlocklistRepo

type ProteinRepo = catalog.ProteinRepo
type CompoundRepo = catalog.CompoundRepo
type OrganismRepo = catalog.OrganismRepo
type ClinicalStageRepo = catalog.ClinicalStageRepo
type ResearchDataRepo = catalog.ResearchDataRepo
type MolecularModelRepo = catalog.MolecularModelRepo
type StageAssociation = catalog.StageAssociation

type OrganismRatingRepo = reviews.OrganismRatingRepo
type RatingSummary = reviews.RatingSummary

type ImportRunRepo = imports.ImportRunRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewTokenBlocklistRepo(db *gorm.DB, log *logger.Logger) TokenBlocklistRepo {
	return auth.NewTokenBlocklistRepo(db, log)
}

func NewProteinRepo(db *gorm.DB, log *logger.Logger) ProteinRepo {
	return catalog.NewProteinRepo(db, log)
}
func NewCompoundRepo(db *gorm.DB, log *logger.Logger) CompoundRepo {
	return catalog.NewCompoundRepo(db, log)
}
func NewOrganismRepo(db *gorm.DB, log *logger.Logger) OrganismRepo {
	return catalog.NewOrganismRepo(db, log)
}
func NewClinicalStageRepo(db *gorm.DB, log *logger.Logger) ClinicalStageRepo {
	return catalog.NewClinicalStageRepo(db, log)
}
func NewResearchDataRepo(db *gorm.DB, log *logger.Logger) ResearchDataRepo {
	return catalog.NewResearchDataRepo(db, log)
}
func NewMolecularModelRepo(db *gorm.DB, log *logger.Logger) MolecularModelRepo {
	return catalog.NewMolecularModelRepo(db, log)
}

func NewOrganismRatingRepo(db *gorm.DB, log *logger.Logger) OrganismRatingRepo {
	return reviews.NewOrganismRatingRepo(db, log)
}

func NewImportRunRepo(db *gorm.DB, log *logger.Logger) ImportRunRepo {
	return imports.NewImportRunRepo(db, log)
}
