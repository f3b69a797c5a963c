package auth

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type TokenBlocklistRepo interface {
	// Revoke is idempotent; revoking an already revoked token is not an error.
	Revoke(dbc dbctx.Context, token string) error
	IsRevoked(dbc dbctx.Context, token string) (bool, error)
}

type tokenBlocklistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTokenBlocklistRepo(db *gorm.DB, baseLog *logger.Logger) TokenBlocklistRepo {
	return &tokenBlocklistRepo{db: db, log: baseLog.With("repo", "TokenBlocklistRepo")}
}

func (r *tokenBlocklistRepo) Revoke(dbc dbctx.Context, token string) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Context()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.JWTTokenBlocklist{JWTToken: token}).Error
}

func (r *tokenBlocklistRepo) IsRevoked(dbc dbctx.Context, token string) (bool, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var count int64
	if err := tx.WithContext(dbc.Context()).
		Model(&types.JWTTokenBlocklist{}).
		Where("jwt_token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
