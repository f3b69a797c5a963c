package domain

import (
	"github.com/yungbote/osteobridge-backend/internal/domain/catalog"
	"github.com/yungbote/osteobridge-backend/internal/domain/imports"
	"github.com/yungbote/osteobridge-backend/internal/domain/reviews"
	"github.com/yungbote/osteobridge-backend/internal/domain/user"
)

const (
	OrganismTypeNatural   = catalog.OrganismTypeNatural
	OrganismTypeProcessed = catalog.OrganismTypeProcessed

	RunStatusRunning    = imports.RunStatusRunning
	RunStatusCommitted  = imports.RunStatusCommitted
	RunStatusRolledBack = imports.RunStatusRolledBack
	RunStatusRejected   = imports.RunStatusRejected

	MinRating         = reviews.MinRating
	MaxRating         = reviews.MaxRating
	MaxReviewLen      = reviews.MaxReviewLen
	AnonymousReviewer = reviews.AnonymousUser
)

type (
	Protein        = catalog.Protein
	Compound       = catalog.Compound
	Organism       = catalog.Organism
	ClinicalStage  = catalog.ClinicalStage
	ResearchData   = catalog.ResearchData
	AssociationKey = catalog.AssociationKey
	MolecularModel = catalog.MolecularModel

	OrganismRating = reviews.OrganismRating

	User              = user.User
	JWTTokenBlocklist = user.JWTTokenBlocklist

	ImportRun = imports.ImportRun
)

func ValidOrganismType(t string) bool { return catalog.ValidOrganismType(t) }

// Models lists every persisted type in bootstrap order.
func Models() []any {
	return []any{
		&User{},
		&JWTTokenBlocklist{},
		&ClinicalStage{},
		&Protein{},
		&Compound{},
		&Organism{},
		&MolecularModel{},
		&ResearchData{},
		&OrganismRating{},
		&ImportRun{},
	}
}
