package catalog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type ProteinRepo interface {
	Create(dbc dbctx.Context, rows []*types.Protein) ([]*types.Protein, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.Protein, error)
	GetByName(dbc dbctx.Context, name string) (*types.Protein, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Protein, error)
	ListAll(dbc dbctx.Context) ([]*types.Protein, error)
}

type proteinRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProteinRepo(db *gorm.DB, baseLog *logger.Logger) ProteinRepo {
	return &proteinRepo{
		db:  db,
		log: baseLog.With("repo", "ProteinRepo"),
	}
}

func (r *proteinRepo) Create(dbc dbctx.Context, rows []*types.Protein) ([]*types.Protein, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(rows) == 0 {
		return []*types.Protein{}, nil
	}
	if err := tx.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *proteinRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Protein, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Protein{}
	if len(names) == 0 {
		return out, nil
	}
	if err := tx.WithContext(dbc.Context()).
		Where("protein_name IN ?", names).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByName returns nil, nil when no protein carries name.
func (r *proteinRepo) GetByName(dbc dbctx.Context, name string) (*types.Protein, error) {
	rows, err := r.GetByNames(dbc, []string{name})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *proteinRepo) ListAll(dbc dbctx.Context) ([]*types.Protein, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Protein{}
	if err := tx.WithContext(dbc.Context()).
		Order("protein_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *proteinRepo) GetByID(dbc dbctx.Context, id uint) (*types.Protein, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var row types.Protein
	err := tx.WithContext(dbc.Context()).
		Where("protein_id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
