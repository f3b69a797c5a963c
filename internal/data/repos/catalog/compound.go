package catalog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type CompoundRepo interface {
	Create(dbc dbctx.Context, rows []*types.Compound) ([]*types.Compound, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.Compound, error)
	GetByName(dbc dbctx.Context, name string) (*types.Compound, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Compound, error)
	ListAll(dbc dbctx.Context) ([]*types.Compound, error)
}

type compoundRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompoundRepo(db *gorm.DB, baseLog *logger.Logger) CompoundRepo {
	return &compoundRepo{
		db:  db,
		log: baseLog.With("repo", "CompoundRepo"),
	}
}

func (r *compoundRepo) Create(dbc dbctx.Context, rows []*types.Compound) ([]*types.Compound, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(rows) == 0 {
		return []*types.Compound{}, nil
	}
	if err := tx.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *compoundRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Compound, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Compound{}
	if len(names) == 0 {
		return out, nil
	}
	if err := tx.WithContext(dbc.Context()).
		Where("compound_name IN ?", names).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *compoundRepo) GetByName(dbc dbctx.Context, name string) (*types.Compound, error) {
	rows, err := r.GetByNames(dbc, []string{name})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *compoundRepo) ListAll(dbc dbctx.Context) ([]*types.Compound, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Compound{}
	if err := tx.WithContext(dbc.Context()).
		Order("compound_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *compoundRepo) GetByID(dbc dbctx.Context, id uint) (*types.Compound, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var row types.Compound
	err := tx.WithContext(dbc.Context()).
		Where("compound_id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
