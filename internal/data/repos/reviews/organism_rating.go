package reviews

import (
	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type RatingSummary struct {
	OrganismID      uint
	AverageRating   float64
	ReviewCount     int64
	ReviewsWithText int64
}

type OrganismRatingRepo interface {
	Create(dbc dbctx.Context, rating *types.OrganismRating) (*types.OrganismRating, error)
	ListByOrganism(dbc dbctx.Context, organismID uint) ([]*types.OrganismRating, error)
	SummariesByOrganisms(dbc dbctx.Context, organismIDs []uint) (map[uint]RatingSummary, error)
}

type organismRatingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganismRatingRepo(db *gorm.DB, baseLog *logger.Logger) OrganismRatingRepo {
	return &organismRatingRepo{
		db:  db,
		log: baseLog.With("repo", "OrganismRatingRepo"),
	}
}

func (r *organismRatingRepo) Create(dbc dbctx.Context, rating *types.OrganismRating) (*types.OrganismRating, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(dbc.Context()).Create(rating).Error; err != nil {
		return nil, err
	}
	return rating, nil
}

// ListByOrganism returns reviews newest first.
func (r *organismRatingRepo) ListByOrganism(dbc dbctx.Context, organismID uint) ([]*types.OrganismRating, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.OrganismRating{}
	if err := tx.WithContext(dbc.Context()).
		Where("organism_id = ?", organismID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SummariesByOrganisms omits organisms without ratings.
func (r *organismRatingRepo) SummariesByOrganisms(dbc dbctx.Context, organismIDs []uint) (map[uint]RatingSummary, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := make(map[uint]RatingSummary, len(organismIDs))
	if len(organismIDs) == 0 {
		return out, nil
	}
	var rows []RatingSummary
	if err := tx.WithContext(dbc.Context()).
		Model(&types.OrganismRating{}).
		Select(`organism_id,
			CAST(AVG(rating) AS DOUBLE PRECISION) AS average_rating,
			COUNT(id) AS review_count,
			COALESCE(SUM(CASE WHEN LENGTH(review) > 0 THEN 1 ELSE 0 END), 0) AS reviews_with_text`).
		Where("organism_id IN ?", organismIDs).
		Group("organism_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.OrganismID] = row
	}
	return out, nil
}
