package imports

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type ImportRunRepo interface {
	Create(dbc dbctx.Context, run *types.ImportRun) (*types.ImportRun, error)
	Finish(dbc dbctx.Context, id uint, status, message string, rowCount int, stats, diagnostics datatypes.JSON, finishedAt time.Time) error
	GetByID(dbc dbctx.Context, id uint) (*types.ImportRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.ImportRun, error)
}

type importRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportRunRepo(db *gorm.DB, baseLog *logger.Logger) ImportRunRepo {
	return &importRunRepo{db: db, log: baseLog.With("repo", "ImportRunRepo")}
}

func (r *importRunRepo) Create(dbc dbctx.Context, run *types.ImportRun) (*types.ImportRun, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = types.RunStatusRunning
	}
	if err := tx.WithContext(dbc.Context()).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *importRunRepo) Finish(dbc dbctx.Context, id uint, status, message string, rowCount int, stats, diagnostics datatypes.JSON, finishedAt time.Time) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	updates := map[string]any{
		"status":      status,
		"message":     message,
		"row_count":   rowCount,
		"finished_at": finishedAt,
	}
	if len(stats) > 0 {
		updates["stats"] = stats
	}
	if len(diagnostics) > 0 {
		updates["diagnostics"] = diagnostics
	}
	return tx.WithContext(dbc.Context()).
		Model(&types.ImportRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *importRunRepo) GetByID(dbc dbctx.Context, id uint) (*types.ImportRun, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var run types.ImportRun
	err := tx.WithContext(dbc.Context()).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *importRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.ImportRun, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	out := []*types.ImportRun{}
	if err := tx.WithContext(dbc.Context()).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
