package catalog

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type MolecularModelRepo interface {
	// Upsert inserts the model or, when the protein/compound pair already has
	// one, replaces its name and file path.
	Upsert(dbc dbctx.Context, m *types.MolecularModel) (*types.MolecularModel, error)
	GetByPair(dbc dbctx.Context, proteinID, compoundID uint) (*types.MolecularModel, error)
}

type molecularModelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMolecularModelRepo(db *gorm.DB, baseLog *logger.Logger) MolecularModelRepo {
	return &molecularModelRepo{
		db:  db,
		log: baseLog.With("repo", "MolecularModelRepo"),
	}
}

func (r *molecularModelRepo) Upsert(dbc dbctx.Context, m *types.MolecularModel) (*types.MolecularModel, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if m == nil || m.ProteinID == nil || m.CompoundID == nil {
		return nil, errors.New("molecular model requires protein and compound")
	}
	if err := tx.WithContext(dbc.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "protein_id"}, {Name: "compound_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"model_name", "file_path", "updated_at"}),
		}).
		Create(m).Error; err != nil {
		return nil, err
	}
	return r.GetByPair(dbc, *m.ProteinID, *m.CompoundID)
}

// GetByPair returns nil, nil when the pair has no model.
func (r *molecularModelRepo) GetByPair(dbc dbctx.Context, proteinID, compoundID uint) (*types.MolecularModel, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var m types.MolecularModel
	err := tx.WithContext(dbc.Context()).
		Where("protein_id = ? AND compound_id = ?", proteinID, compoundID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
