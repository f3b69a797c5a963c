package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yungbote/osteobridge-backend/internal/clients/redis"
	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/apierr"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type StageOption struct {
	StageID   any    `json:"stage_id"`
	StageName string `json:"stage_name"`
}

type CompoundProteinModel struct {
	Protein   string `json:"protein"`
	Compound  string `json:"compound"`
	PubchemID string `json:"pubchem_id"`
	Model     string `json:"model"`
}

type RatingInfo struct {
	AverageRating   float64 `json:"average_rating"`
	ReviewCount     int64   `json:"review_count"`
	ReviewsWithText int64   `json:"reviews_with_text"`
}

type OrganismSummary struct {
	DataID               uint                   `json:"data_id"`
	OrganismID           uint                   `json:"organism_id"`
	OrganismName         string                 `json:"organism_name"`
	OrganismType         string                 `json:"organism_type"`
	Food                 string                 `json:"food"`
	CompoundProteinModel []CompoundProteinModel `json:"compound_protein_model"`
	Rating               *RatingInfo            `json:"rating"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

type OrganismPage struct {
	Data       []OrganismSummary `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

type Review struct {
	ID            uint      `json:"id"`
	OrganismID    uint      `json:"organism_id"`
	Rating        int       `json:"rating"`
	Review        string    `json:"review"`
	ReviewerName  string    `json:"reviewer_name"`
	ReviewerEmail string    `json:"reviewer_email"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type OrganismReviews struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}

type RatingInput struct {
	Rating        int
	Review        string
	ReviewerName  *string
	ReviewerEmail *string
}

type OrganismService interface {
	ListClinicalStages(ctx context.Context) ([]StageOption, error)
	ListByStage(ctx context.Context, stageID uint, page, perPage int) (*OrganismPage, error)
	GetReviews(ctx context.Context, organismID uint) (*OrganismReviews, error)
	AddRating(ctx context.Context, organismID uint, in RatingInput) (uint, error)
}

type organismService struct {
	log          *logger.Logger
	stages       repos.ClinicalStageRepo
	organisms    repos.OrganismRepo
	researchData repos.ResearchDataRepo
	ratings      repos.OrganismRatingRepo
	cache        redis.ListingCache
}

func NewOrganismService(
	log *logger.Logger,
	stages repos.ClinicalStageRepo,
	organisms repos.OrganismRepo,
	researchData repos.ResearchDataRepo,
	ratings repos.OrganismRatingRepo,
	cache redis.ListingCache,
) OrganismService {
	if cache == nil {
		cache = redis.NoopCache{}
	}
	return &organismService{
		log:          log.With("service", "OrganismService"),
		stages:       stages,
		organisms:    organisms,
		researchData: researchData,
		ratings:      ratings,
		cache:        cache,
	}
}

func (s *organismService) ListClinicalStages(ctx context.Context) ([]StageOption, error) {
	rows, err := s.stages.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list clinical stages: %w", err)
	}
	out := make([]StageOption, 0, len(rows)+1)
	out = append(out, StageOption{StageID: "", StageName: "Select stage"})
	for _, st := range rows {
		out = append(out, StageOption{StageID: st.StageID, StageName: st.StageName})
	}
	return out, nil
}

// ValidatePagination applies the listing bounds.
func ValidatePagination(page, perPage int) error {
	if page < 1 {
		return badRequest("Page must be a positive integer")
	}
	if perPage < 1 || perPage > MaxPerPage {
		return badRequest(fmt.Sprintf("Per_page must be between 1 and %d", MaxPerPage))
	}
	return nil
}

func (s *organismService) ListByStage(ctx context.Context, stageID uint, page, perPage int) (*OrganismPage, error) {
	if err := ValidatePagination(page, perPage); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("stage=%d:page=%d:per_page=%d", stageID, page, perPage)
	raw, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		out, err := s.loadByStage(ctx, stageID, page, perPage)
		if err != nil {
			return nil, err
		}
		return json.Marshal(out)
	})
	if err != nil {
		return nil, err
	}
	var out OrganismPage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode organism page: %w", err)
	}
	return &out, nil
}

func (s *organismService) loadByStage(ctx context.Context, stageID uint, page, perPage int) (*OrganismPage, error) {
	dbc := dbctx.Context{Ctx: ctx}
	assocs, err := s.researchData.ListStageAssociations(dbc, stageID)
	if err != nil {
		return nil, fmt.Errorf("list stage associations: %w", err)
	}

	byOrganism := map[uint]*OrganismSummary{}
	seen := map[uint]map[CompoundProteinModel]struct{}{}
	order := make([]uint, 0)
	for _, a := range assocs {
		sum, ok := byOrganism[a.OrganismID]
		if !ok {
			sum = &OrganismSummary{
				DataID:               a.DataID,
				OrganismID:           a.OrganismID,
				OrganismName:         a.OrganismName,
				OrganismType:         a.OrganismType,
				CompoundProteinModel: []CompoundProteinModel{},
			}
			byOrganism[a.OrganismID] = sum
			seen[a.OrganismID] = map[CompoundProteinModel]struct{}{}
			order = append(order, a.OrganismID)
		}
		if a.DataID < sum.DataID {
			sum.DataID = a.DataID
		}
		cpm := CompoundProteinModel{
			Protein:   a.ProteinName,
			Compound:  a.CompoundName,
			PubchemID: deref(a.PubchemID),
			Model:     deref(a.ModelName),
		}
		if _, dup := seen[a.OrganismID][cpm]; dup {
			continue
		}
		seen[a.OrganismID][cpm] = struct{}{}
		sum.CompoundProteinModel = append(sum.CompoundProteinModel, cpm)
	}

	summaries, err := s.ratings.SummariesByOrganisms(dbc, order)
	if err != nil {
		return nil, fmt.Errorf("rating summaries: %w", err)
	}

	all := make([]OrganismSummary, 0, len(order))
	for _, id := range order {
		sum := byOrganism[id]
		if rs, ok := summaries[id]; ok && rs.ReviewCount > 0 {
			sum.Rating = &RatingInfo{
				AverageRating:   round1(rs.AverageRating),
				ReviewCount:     rs.ReviewCount,
				ReviewsWithText: rs.ReviewsWithText,
			}
		}
		sort.Slice(sum.CompoundProteinModel, func(i, j int) bool {
			a, b := sum.CompoundProteinModel[i], sum.CompoundProteinModel[j]
			if a.Protein != b.Protein {
				return a.Protein < b.Protein
			}
			if a.Compound != b.Compound {
				return a.Compound < b.Compound
			}
			return a.Model < b.Model
		})
		all = append(all, *sum)
	}

	// Highest rated first, unrated last, organism id as the tie-break so
	// pages are stable.
	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := all[i].Rating, all[j].Rating
		switch {
		case ri != nil && rj != nil && ri.AverageRating != rj.AverageRating:
			return ri.AverageRating > rj.AverageRating
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		}
		return all[i].OrganismID < all[j].OrganismID
	})

	total := len(all)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return &OrganismPage{
		Data: all[start:end],
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *organismService) GetReviews(ctx context.Context, organismID uint) (*OrganismReviews, error) {
	rows, err := s.ratings.ListByOrganism(dbctx.Context{Ctx: ctx}, organismID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	out := &OrganismReviews{Reviews: make([]Review, 0, len(rows))}
	total := 0
	for _, r := range rows {
		total += r.Rating
		out.Reviews = append(out.Reviews, Review{
			ID:            r.ID,
			OrganismID:    r.OrganismID,
			Rating:        r.Rating,
			Review:        r.Review,
			ReviewerName:  orAnonymous(r.ReviewerName),
			ReviewerEmail: orAnonymous(r.ReviewerEmail),
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	out.ReviewCount = len(rows)
	if len(rows) > 0 {
		out.AverageRating = round1(float64(total) / float64(len(rows)))
	}
	return out, nil
}

// ParseRating accepts only a bare JSON integer literal.
func ParseRating(raw json.RawMessage) (int, error) {
	msg := fmt.Sprintf("Rating must be an integer between %d and %d", types.MinRating, types.MaxRating)
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, badRequest(msg)
	}
	return v, nil
}

func (s *organismService) AddRating(ctx context.Context, organismID uint, in RatingInput) (uint, error) {
	if in.Rating < types.MinRating || in.Rating > types.MaxRating {
		return 0, badRequest(fmt.Sprintf("Rating must be an integer between %d and %d", types.MinRating, types.MaxRating))
	}
	if utf8.RuneCountInString(in.Review) > types.MaxReviewLen {
		return 0, badRequest(fmt.Sprintf("Review must be less than %d characters", types.MaxReviewLen))
	}

	dbc := dbctx.Context{Ctx: ctx}
	org, err := s.organisms.GetByID(dbc, organismID)
	if err != nil {
		return 0, fmt.Errorf("load organism: %w", err)
	}
	if org == nil {
		return 0, apierr.New(http.StatusNotFound, "not_found", errors.New("Organism not found"))
	}

	rating, err := s.ratings.Create(dbc, &types.OrganismRating{
		OrganismID:    organismID,
		Rating:        in.Rating,
		Review:        in.Review,
		ReviewerName:  anonymousDefault(in.ReviewerName),
		ReviewerEmail: anonymousDefault(in.ReviewerEmail),
	})
	if err != nil {
		return 0, fmt.Errorf("create rating: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Failed to invalidate organism listing cache", "error", err)
	}
	return rating.ID, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orAnonymous(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.AnonymousReviewer
	}
	return s
}

// anonymousDefault applies the default only when the field was omitted.
func anonymousDefault(s *string) string {
	if s == nil {
		return types.AnonymousReviewer
	}
	return *s
}
