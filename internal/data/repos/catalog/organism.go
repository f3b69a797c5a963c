package catalog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type OrganismRepo interface {
	Create(dbc dbctx.Context, rows []*types.Organism) ([]*types.Organism, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.Organism, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Organism, error)
}

type organismRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganismRepo(db *gorm.DB, baseLog *logger.Logger) OrganismRepo {
	return &organismRepo{
		db:  db,
		log: baseLog.With("repo", "OrganismRepo"),
	}
}

func (r *organismRepo) Create(dbc dbctx.Context, rows []*types.Organism) ([]*types.Organism, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(rows) == 0 {
		return []*types.Organism{}, nil
	}
	for _, o := range rows {
		if o != nil && o.OrganismType == "" {
			o.OrganismType = types.OrganismTypeNatural
		}
	}
	if err := tx.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *organismRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Organism, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Organism{}
	if len(names) == 0 {
		return out, nil
	}
	if err := tx.WithContext(dbc.Context()).
		Where("organism_name IN ?", names).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns nil, nil when the organism does not exist.
func (r *organismRepo) GetByID(dbc dbctx.Context, id uint) (*types.Organism, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var o types.Organism
	err := tx.WithContext(dbc.Context()).
		Where("organism_id = ?", id).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
