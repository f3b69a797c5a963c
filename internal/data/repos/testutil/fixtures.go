package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
)

// SeedClinicalStages inserts stages with the given ids named "Phase <id>".
// Existing ids are left alone.
func SeedClinicalStages(tb testing.TB, ctx context.Context, tx *gorm.DB, ids ...uint) []*types.ClinicalStage {
	tb.Helper()
	out := make([]*types.ClinicalStage, 0, len(ids))
	for _, id := range ids {
		var existing types.ClinicalStage
		if err := tx.WithContext(ctx).Where("stage_id = ?", id).Limit(1).Find(&existing).Error; err != nil {
			tb.Fatalf("lookup stage %d: %v", id, err)
		}
		if existing.StageID == id {
			out = append(out, &existing)
			continue
		}
		s := &types.ClinicalStage{StageID: id, StageName: stageName(id)}
		if err := tx.WithContext(ctx).Create(s).Error; err != nil {
			tb.Fatalf("seed stage %d: %v", id, err)
		}
		out = append(out, s)
	}
	return out
}

func stageName(id uint) string {
	names := map[uint]string{1: "Phase 1", 2: "Phase 2", 3: "Phase 3", 4: "Phase 4"}
	if n, ok := names[id]; ok {
		return n
	}
	return "Stage"
}

func SeedProtein(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Protein {
	tb.Helper()
	p := &types.Protein{ProteinName: name}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed protein: %v", err)
	}
	return p
}

func SeedCompound(tb testing.TB, ctx context.Context, tx *gorm.DB, name, iupac string) *types.Compound {
	tb.Helper()
	c := &types.Compound{CompoundName: name, CompoundIUPAC: iupac}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed compound: %v", err)
	}
	return c
}

func SeedOrganism(tb testing.TB, ctx context.Context, tx *gorm.DB, name, organismType string) *types.Organism {
	tb.Helper()
	if organismType == "" {
		organismType = types.OrganismTypeNatural
	}
	o := &types.Organism{OrganismName: name, OrganismType: organismType}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed organism: %v", err)
	}
	return o
}

func SeedResearchData(tb testing.TB, ctx context.Context, tx *gorm.DB, key types.AssociationKey) *types.ResearchData {
	tb.Helper()
	rd := &types.ResearchData{
		StageID:    key.StageID,
		ProteinID:  key.ProteinID,
		CompoundID: key.CompoundID,
		OrganismID: key.OrganismID,
		CountryID:  key.CountryID,
	}
	if err := tx.WithContext(ctx).Create(rd).Error; err != nil {
		tb.Fatalf("seed research data: %v", err)
	}
	return rd
}

func SeedRating(tb testing.TB, ctx context.Context, tx *gorm.DB, organismID uint, rating int, review string) *types.OrganismRating {
	tb.Helper()
	r := &types.OrganismRating{
		OrganismID:    organismID,
		Rating:        rating,
		Review:        review,
		ReviewerName:  types.AnonymousReviewer,
		ReviewerEmail: types.AnonymousReviewer,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed rating: %v", err)
	}
	return r
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, passwordHash string) *types.User {
	tb.Helper()
	u := &types.User{Username: "tester", Email: email, Password: passwordHash}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}
