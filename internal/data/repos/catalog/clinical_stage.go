package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

// ClinicalStageRepo is read-only; stages are maintained outside the service.
type ClinicalStageRepo interface {
	ListAll(dbc dbctx.Context) ([]*types.ClinicalStage, error)
	ListIDs(dbc dbctx.Context) ([]uint, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)
}

type clinicalStageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClinicalStageRepo(db *gorm.DB, baseLog *logger.Logger) ClinicalStageRepo {
	return &clinicalStageRepo{
		db:  db,
		log: baseLog.With("repo", "ClinicalStageRepo"),
	}
}

func (r *clinicalStageRepo) ListAll(dbc dbctx.Context) ([]*types.ClinicalStage, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.ClinicalStage{}
	if err := tx.WithContext(dbc.Context()).
		Order("stage_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *clinicalStageRepo) ListIDs(dbc dbctx.Context) ([]uint, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var ids []uint
	if err := tx.WithContext(dbc.Context()).
		Model(&types.ClinicalStage{}).
		Order("stage_id ASC").
		Pluck("stage_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *clinicalStageRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var count int64
	if err := tx.WithContext(dbc.Context()).
		Model(&types.ClinicalStage{}).
		Where("stage_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
