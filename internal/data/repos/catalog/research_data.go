package catalog

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

// StageAssociation is one research_data row at a stage, flattened with the
// names the organism listing needs.
type StageAssociation struct {
	DataID       uint
	OrganismID   uint
	OrganismName string
	OrganismType string
	ProteinName  string
	CompoundName string
	PubchemID    *string
	ModelName    *string
}

type ResearchDataRepo interface {
	Create(dbc dbctx.Context, rows []*types.ResearchData) ([]*types.ResearchData, error)
	// ExistingKeys returns the subset of keys already persisted. Callers bound
	// len(keys); the query carries five parameters per key.
	ExistingKeys(dbc dbctx.Context, keys []types.AssociationKey) (map[types.AssociationKey]struct{}, error)
	ListStageAssociations(dbc dbctx.Context, stageID uint) ([]StageAssociation, error)
	Count(dbc dbctx.Context) (int64, error)
}

type researchDataRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResearchDataRepo(db *gorm.DB, baseLog *logger.Logger) ResearchDataRepo {
	return &researchDataRepo{
		db:  db,
		log: baseLog.With("repo", "ResearchDataRepo"),
	}
}

func (r *researchDataRepo) Create(dbc dbctx.Context, rows []*types.ResearchData) ([]*types.ResearchData, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(rows) == 0 {
		return []*types.ResearchData{}, nil
	}
	if err := tx.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

const keyPredicate = "(stage_id = ? AND protein_id = ? AND compound_id = ? AND organism_id = ? AND country_id = ?)"

func (r *researchDataRepo) ExistingKeys(dbc dbctx.Context, keys []types.AssociationKey) (map[types.AssociationKey]struct{}, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := make(map[types.AssociationKey]struct{}, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	// Row-value IN lists are not portable to SQLite, so the batch is an
	// OR of bound equality groups.
	var sb strings.Builder
	args := make([]any, 0, len(keys)*5)
	sb.WriteString("(")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString(keyPredicate)
		args = append(args, k.StageID, k.ProteinID, k.CompoundID, k.OrganismID, k.CountryID)
	}
	sb.WriteString(")")

	var found []types.ResearchData
	if err := tx.WithContext(dbc.Context()).
		Model(&types.ResearchData{}).
		Select("stage_id", "protein_id", "compound_id", "organism_id", "country_id").
		Where(sb.String(), args...).
		Find(&found).Error; err != nil {
		return nil, err
	}
	for _, row := range found {
		out[row.Key()] = struct{}{}
	}
	return out, nil
}

func (r *researchDataRepo) ListStageAssociations(dbc dbctx.Context, stageID uint) ([]StageAssociation, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []StageAssociation{}
	if err := tx.WithContext(dbc.Context()).
		Table("research_data AS rd").
		Select(`rd.data_id AS data_id,
			rd.organism_id AS organism_id,
			o.organism_name AS organism_name,
			o.organism_type AS organism_type,
			p.protein_name AS protein_name,
			c.compound_name AS compound_name,
			c.pubchem_id AS pubchem_id,
			mm.model_name AS model_name`).
		Joins("JOIN organisms o ON o.organism_id = rd.organism_id").
		Joins("JOIN proteins p ON p.protein_id = rd.protein_id").
		Joins("JOIN compounds c ON c.compound_id = rd.compound_id").
		Joins("LEFT JOIN molecular_models mm ON mm.protein_id = rd.protein_id AND mm.compound_id = rd.compound_id").
		Where("rd.stage_id = ?", stageID).
		Order("rd.data_id ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *researchDataRepo) Count(dbc dbctx.Context) (int64, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var n int64
	if err := tx.WithContext(dbc.Context()).Model(&types.ResearchData{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
