package user

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, u *types.User) (*types.User, error)
	GetByID(dbc dbctx.Context, id uint) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	SetJWTAuthActive(dbc dbctx.Context, id uint, active bool) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, u *types.User) (*types.User, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(dbc.Context()).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uint) (*types.User, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	return r.first(dbc, "email = ?", email)
}

// first returns nil, nil on a miss.
func (r *userRepo) first(dbc dbctx.Context, query string, arg any) (*types.User, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var u types.User
	err := tx.WithContext(dbc.Context()).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var count int64
	if err := tx.WithContext(dbc.Context()).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) SetJWTAuthActive(dbc dbctx.Context, id uint, active bool) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Context()).
		Model(&types.User{}).
		Where("id = ?", id).
		Update("jwt_auth_active", active).Error
}
