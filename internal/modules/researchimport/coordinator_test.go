package researchimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	"github.com/yungbote/osteobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/osteobridge-backend/internal/domain"
	errs "github.com/yungbote/osteobridge-backend/internal/pkg/errors"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
)

const header = "Target,compound_name,iupac_name,organisms,clinical_stage\n"

func newTestCoordinator(t *testing.T, db *gorm.DB, store AssociationStore) *Coordinator {
	t.Helper()
	log := testutil.Logger(t)
	return NewCoordinator(Deps{
		DB:           db,
		Log:          log,
		Proteins:     repos.NewProteinRepo(db, log),
		Compounds:    repos.NewCompoundRepo(db, log),
		Organisms:    repos.NewOrganismRepo(db, log),
		Stages:       repos.NewClinicalStageRepo(db, log),
		ResearchData: repos.NewResearchDataRepo(db, log),
		Associations: store,
	}, DefaultOptions())
}

func setup(t *testing.T) (*gorm.DB, context.Context) {
	t.Helper()
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	testutil.SeedClinicalStages(t, ctx, db, 1, 2, 3, 4)
	return db, ctx
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestImportCommitsAndReportsStats(t *testing.T) {
	db, ctx := setup(t)
	c := newTestCoordinator(t, db, nil)

	report, err := c.Import(ctx, strings.NewReader(header+`P1,C1,I1,"O1|O2","1,2"`+"\n"))
	require.NoError(t, err)
	require.True(t, report.Result.Success)
	require.NotNil(t, report.Result.Stats)

	s := report.Result.Stats
	assert.Equal(t, EntityStats{TotalFound: 1, Existing: 0, Imported: 1}, s.Proteins)
	assert.Equal(t, EntityStats{TotalFound: 1, Existing: 0, Imported: 1}, s.Compounds)
	assert.Equal(t, EntityStats{TotalFound: 2, Existing: 0, Imported: 2}, s.Organisms)
	assert.Equal(t, LinkStats{TotalProcessed: 4, Existing: 0, Imported: 4}, s.ResearchData)
	assert.Equal(t, StateCommitted, report.State)
	assert.Equal(t, int64(4), count(t, db, &types.ResearchData{}))

	var o types.Organism
	require.NoError(t, db.Where("organism_name = ?", "O1").First(&o).Error)
	assert.Equal(t, types.OrganismTypeNatural, o.OrganismType)
}

func TestImportTwiceIsIdempotent(t *testing.T) {
	db, ctx := setup(t)
	c := newTestCoordinator(t, db, nil)
	src := header + `P1,C1,I1,"O1|O2","1,2"` + "\n" + `P2,C1,I1,O2,3` + "\n"

	_, err := c.Import(ctx, strings.NewReader(src))
	require.NoError(t, err)
	report, err := c.Import(ctx, strings.NewReader(src))
	require.NoError(t, err)

	s := report.Result.Stats
	assert.Equal(t, 0, s.Proteins.Imported)
	assert.Equal(t, 0, s.Compounds.Imported)
	assert.Equal(t, 0, s.Organisms.Imported)
	assert.Equal(t, 0, s.ResearchData.Imported)
	assert.Equal(t, 5, s.ResearchData.Existing)
	assert.Equal(t, int64(5), count(t, db, &types.ResearchData{}))
	assert.Equal(t, int64(2), count(t, db, &types.Protein{}))
}

func TestImportOverlappingFileAddsOnlyNewTuples(t *testing.T) {
	db, ctx := setup(t)
	c := newTestCoordinator(t, db, nil)

	_, err := c.Import(ctx, strings.NewReader(header+`P1,C1,I1,O1,1`+"\n"))
	require.NoError(t, err)
	report, err := c.Import(ctx, strings.NewReader(header+`P1,C1,I1,"O1|O3","1,2"`+"\n"))
	require.NoError(t, err)

	s := report.Result.Stats
	assert.Equal(t, EntityStats{TotalFound: 2, Existing: 1, Imported: 1}, s.Organisms)
	assert.Equal(t, LinkStats{TotalProcessed: 4, Existing: 1, Imported: 3}, s.ResearchData)
}

func TestImportNeverOverwritesIUPAC(t *testing.T) {
	db, ctx := setup(t)
	testutil.SeedCompound(t, ctx, db, "C1", "original-iupac")
	c := newTestCoordinator(t, db, nil)

	_, err := c.Import(ctx, strings.NewReader(header+`P1,C1,changed-iupac,O1,1`+"\n"+`P1,C2,,O1,1`+"\n"))
	require.NoError(t, err)

	var c1 types.Compound
	require.NoError(t, db.Where("compound_name = ?", "C1").First(&c1).Error)
	assert.Equal(t, "original-iupac", c1.CompoundIUPAC)
}

func TestImportSchemaErrorWritesNothing(t *testing.T) {
	db, ctx := setup(t)
	c := newTestCoordinator(t, db, nil)

	report, err := c.Import(ctx, strings.NewReader("Target,compound_name\nP1,C1\n"))
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.False(t, report.Result.Success)
	assert.Nil(t, report.Result.Stats)
	assert.Equal(t, StateRolledBack, report.State)
	assert.Equal(t, int64(0), count(t, db, &types.Protein{}))
}

type failingStore struct{ AssociationStore }

func (failingStore) Insert(dbctx.Context, []types.AssociationKey) error {
	return errors.New("insert research_data: connection reset")
}

func TestImportRollsBackEntitiesWhenLinkingFails(t *testing.T) {
	db, ctx := setup(t)
	log := testutil.Logger(t)
	store := failingStore{associationPort{repo: repos.NewResearchDataRepo(db, log), batch: 500}}
	c := newTestCoordinator(t, db, store)

	report, err := c.Import(ctx, strings.NewReader(header+`P1,C1,I1,"O1|O2","1,2"`+"\n"))
	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "research_data", pe.Step)
	assert.False(t, pe.Conflict)

	assert.False(t, report.Result.Success)
	assert.Nil(t, report.Result.Stats)
	assert.NotContains(t, report.Result.Message, "connection reset")
	assert.Equal(t, StateRolledBack, report.State)

	assert.Equal(t, int64(0), count(t, db, &types.Protein{}))
	assert.Equal(t, int64(0), count(t, db, &types.Compound{}))
	assert.Equal(t, int64(0), count(t, db, &types.Organism{}))
	assert.Equal(t, int64(0), count(t, db, &types.ResearchData{}))
}

func TestRunTransitionsAndIsNotReentrant(t *testing.T) {
	db, ctx := setup(t)
	c := newTestCoordinator(t, db, nil)

	run := c.NewRun()
	var seen []State
	run.OnTransition(func(_, to State) { seen = append(seen, to) })

	_, err := run.Execute(ctx, strings.NewReader(header+`P1,C1,I1,O1,1`+"\n"))
	require.NoError(t, err)
	assert.Equal(t, []State{
		StateReading,
		StateReconcilingProteins,
		StateReconcilingCompounds,
		StateReconcilingOrganisms,
		StateLinking,
		StateCommitted,
	}, seen)

	_, err = run.Execute(ctx, strings.NewReader(header))
	assert.ErrorIs(t, err, ErrRunStarted)
}

func TestImportEmptyOrganismsIsNotAnError(t *testing.T) {
	db, ctx := setup(t)
	c := newTestCoordinator(t, db, nil)

	report, err := c.Import(ctx, strings.NewReader(header+`P1,C1,I1,,"1,2"`+"\n"))
	require.NoError(t, err)
	assert.True(t, report.Result.Success)
	assert.Equal(t, 0, report.Result.Stats.ResearchData.TotalProcessed)
	assert.Equal(t, 1, report.Result.Stats.Proteins.Imported)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: proteins.protein_name")))
	assert.False(t, IsUniqueViolation(errors.New("timeout")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestPersistenceErrorMatchesConflictSentinel(t *testing.T) {
	conflict := newPersistenceError("proteins", gorm.ErrDuplicatedKey)
	assert.True(t, conflict.Conflict)
	assert.ErrorIs(t, conflict, errs.ErrConflict)
	assert.ErrorIs(t, conflict, gorm.ErrDuplicatedKey)

	other := newPersistenceError("proteins", errors.New("timeout"))
	assert.False(t, errors.Is(other, errs.ErrConflict))
}

// staleStore reports no existing tuples, as a concurrent writer would see
// before the other import commits.
type staleStore struct{ associationPort }

func (staleStore) ExistingKeys(dbctx.Context, []types.AssociationKey) (map[types.AssociationKey]struct{}, error) {
	return map[types.AssociationKey]struct{}{}, nil
}

func TestImportUniqueRaceRollsBackWholeImport(t *testing.T) {
	db, ctx := setup(t)
	_, err := newTestCoordinator(t, db, nil).Import(ctx, strings.NewReader(header+`P1,C1,I1,O1,1`+"\n"))
	require.NoError(t, err)

	log := testutil.Logger(t)
	store := staleStore{associationPort{repo: repos.NewResearchDataRepo(db, log), batch: 500}}
	c := newTestCoordinator(t, db, store)

	report, err := c.Import(ctx, strings.NewReader(header+`P1,C1,I1,"O1|O9",1`+"\n"))
	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Conflict)
	assert.Equal(t, "research_data", pe.Step)
	assert.ErrorIs(t, err, errs.ErrConflict)

	assert.False(t, report.Result.Success)
	assert.Nil(t, report.Result.Stats)
	assert.Equal(t, "Import conflicted with a concurrent change; no data was saved. Please retry.", report.Result.Message)
	assert.Equal(t, StateRolledBack, report.State)

	var o9 int64
	require.NoError(t, db.Model(&types.Organism{}).Where("organism_name = ?", "O9").Count(&o9).Error)
	assert.Zero(t, o9)
	assert.Equal(t, int64(1), count(t, db, &types.Organism{}))
	assert.Equal(t, int64(1), count(t, db, &types.ResearchData{}))
}
