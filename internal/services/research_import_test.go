package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	"github.com/yungbote/osteobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/modules/researchimport"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
)

const csvHeader = "Target,compound_name,iupac_name,organisms,clinical_stage\n"

type failingStore struct{}

func (failingStore) ExistingKeys(dbctx.Context, []types.AssociationKey) (map[types.AssociationKey]struct{}, error) {
	return map[types.AssociationKey]struct{}{}, nil
}

func (failingStore) Insert(dbctx.Context, []types.AssociationKey) error {
	return errors.New("disk full")
}

type importFixture struct {
	svc     ResearchImportService
	db      *gorm.DB
	cache   *countingCache
	metrics *observability.Metrics
	runs    repos.ImportRunRepo
}

func newImportFixture(t *testing.T, store researchimport.AssociationStore) importFixture {
	t.Helper()
	db := testutil.SQLiteDB(t)
	log := testutil.Logger(t)
	testutil.SeedClinicalStages(t, context.Background(), db, 1, 2)

	coord := researchimport.NewCoordinator(researchimport.Deps{
		DB:           db,
		Log:          log,
		Proteins:     repos.NewProteinRepo(db, log),
		Compounds:    repos.NewCompoundRepo(db, log),
		Organisms:    repos.NewOrganismRepo(db, log),
		Stages:       repos.NewClinicalStageRepo(db, log),
		ResearchData: repos.NewResearchDataRepo(db, log),
		Associations: store,
	}, researchimport.DefaultOptions())

	cache := &countingCache{}
	metrics := observability.NewMetrics()
	runs := repos.NewImportRunRepo(db, log)
	return importFixture{
		svc:     NewResearchImportService(log, coord, runs, cache, metrics, 1024),
		db:      db,
		cache:   cache,
		metrics: metrics,
		runs:    runs,
	}
}

func upload(name, body string) CSVUpload {
	return CSVUpload{FileName: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestImportCommitsAndAuditsRun(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: 7})

	out, err := f.svc.Import(ctx, upload("data.CSV", csvHeader+`P1,C1,I1,"O1|O2","1,2"`+"\n"))
	require.NoError(t, err)
	require.True(t, out.Result.Success)
	require.NotNil(t, out.Result.Stats)
	assert.Equal(t, 4, out.Result.Stats.ResearchData.Imported)
	assert.Equal(t, 1, f.cache.invalidated)

	run, err := f.runs.GetByID(dbcFor(ctx), out.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, types.RunStatusCommitted, run.Status)
	assert.Equal(t, "data.CSV", run.FileName)
	require.NotNil(t, run.UserID)
	assert.Equal(t, uint(7), *run.UserID)
	assert.Equal(t, 1, run.RowCount)
	require.NotNil(t, run.FinishedAt)

	var stats researchimport.Stats
	require.NoError(t, json.Unmarshal(run.Stats, &stats))
	assert.Equal(t, 2, stats.Organisms.Imported)

	body := scrape(t, f.metrics)
	assert.Contains(t, body, `osteobridge_import_total{status="committed"} 1`)
	assert.Contains(t, body, `osteobridge_import_entities_total{entity="research_data",outcome="imported"} 4`)
}

func TestImportRejectsMissingColumns(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, upload("data.csv", "Target,compound_name\nP1,C1\n"))
	ae := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, ae.Error(), "organisms")
	assert.Zero(t, f.cache.invalidated)

	runs, err := f.svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunStatusRejected, runs[0].Status)
}

func TestImportRollsBackOnPersistenceFailure(t *testing.T) {
	f := newImportFixture(t, failingStore{})
	ctx := context.Background()

	_, err := f.svc.Import(ctx, upload("data.csv", csvHeader+"P1,C1,I1,O1,1\n"))
	ae := requireStatus(t, err, http.StatusInternalServerError)
	assert.NotContains(t, ae.Error(), "disk full")

	var proteins int64
	require.NoError(t, f.db.Model(&types.Protein{}).Count(&proteins).Error)
	assert.Zero(t, proteins)

	runs, err := f.svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunStatusRolledBack, runs[0].Status)
	assert.Contains(t, scrape(t, f.metrics), `osteobridge_import_total{status="rolled_back"} 1`)
}

func TestValidateCSVUpload(t *testing.T) {
	require.NoError(t, ValidateCSVUpload("a.csv", 10, 100))
	requireStatus(t, ValidateCSVUpload("", 10, 100), http.StatusBadRequest)
	requireStatus(t, ValidateCSVUpload("a.xlsx", 10, 100), http.StatusBadRequest)
	requireStatus(t, ValidateCSVUpload("a.csv", 101, 100), http.StatusRequestEntityTooLarge)
}

// staleStore inserts through the real repo but never sees existing tuples.
type staleStore struct{ repo repos.ResearchDataRepo }

func (staleStore) ExistingKeys(dbctx.Context, []types.AssociationKey) (map[types.AssociationKey]struct{}, error) {
	return map[types.AssociationKey]struct{}{}, nil
}

func (s staleStore) Insert(dbc dbctx.Context, keys []types.AssociationKey) error {
	rows := make([]*types.ResearchData, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, &types.ResearchData{
			StageID:    k.StageID,
			ProteinID:  k.ProteinID,
			CompoundID: k.CompoundID,
			OrganismID: k.OrganismID,
			CountryID:  k.CountryID,
		})
	}
	_, err := s.repo.Create(dbc, rows)
	return err
}

func TestImportConcurrentDuplicateReturnsConflict(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Import(ctx, upload("data.csv", csvHeader+"P1,C1,I1,O1,1\n"))
	require.NoError(t, err)

	log := testutil.Logger(t)
	coord := researchimport.NewCoordinator(researchimport.Deps{
		DB:           f.db,
		Log:          log,
		Proteins:     repos.NewProteinRepo(f.db, log),
		Compounds:    repos.NewCompoundRepo(f.db, log),
		Organisms:    repos.NewOrganismRepo(f.db, log),
		Stages:       repos.NewClinicalStageRepo(f.db, log),
		ResearchData: repos.NewResearchDataRepo(f.db, log),
		Associations: staleStore{repo: repos.NewResearchDataRepo(f.db, log)},
	}, researchimport.DefaultOptions())
	svc := NewResearchImportService(log, coord, f.runs, f.cache, f.metrics, 1024)

	_, err = svc.Import(ctx, upload("data.csv", csvHeader+`P1,C1,I1,"O1|O9",1`+"\n"))
	ae := requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, "import_conflict", ae.Code)
	assert.Equal(t, "Import conflicted with a concurrent change; no data was saved. Please retry.", ae.Error())

	var organisms int64
	require.NoError(t, f.db.Model(&types.Organism{}).Count(&organisms).Error)
	assert.Equal(t, int64(1), organisms)
	assert.Equal(t, 1, f.cache.invalidated)

	runs, err := svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, types.RunStatusRolledBack, runs[0].Status)
}
