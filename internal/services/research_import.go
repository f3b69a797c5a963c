package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/osteobridge-backend/internal/clients/redis"
	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/modules/researchimport"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/apierr"
	"github.com/yungbote/osteobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

const DefaultMaxUploadBytes int64 = 16 << 20

type CSVUpload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// ImportOutcome pairs the caller-facing result with its audit row.
type ImportOutcome struct {
	RunID  uint
	Result researchimport.Result
}

type ResearchImportService interface {
	Import(ctx context.Context, in CSVUpload) (*ImportOutcome, error)
	ListRuns(ctx context.Context, limit int) ([]*types.ImportRun, error)
	MaxUploadBytes() int64
}

type researchImportService struct {
	log            *logger.Logger
	coordinator    *researchimport.Coordinator
	runs           repos.ImportRunRepo
	cache          redis.ListingCache
	metrics        *observability.Metrics
	maxUploadBytes int64
}

func NewResearchImportService(
	log *logger.Logger,
	coordinator *researchimport.Coordinator,
	runs repos.ImportRunRepo,
	cache redis.ListingCache,
	metrics *observability.Metrics,
	maxUploadBytes int64,
) ResearchImportService {
	if cache == nil {
		cache = redis.NoopCache{}
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &researchImportService{
		log:            log.With("service", "ResearchImportService"),
		coordinator:    coordinator,
		runs:           runs,
		cache:          cache,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *researchImportService) MaxUploadBytes() int64 { return s.maxUploadBytes }

// ValidateCSVUpload checks the name and declared size of an upload.
func ValidateCSVUpload(fileName string, size, max int64) error {
	if strings.TrimSpace(fileName) == "" {
		return badRequest("No file selected")
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return badRequest("File must be a CSV")
	}
	if max > 0 && size > max {
		return apierr.New(http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Errorf("File exceeds the maximum upload size of %d bytes", max))
	}
	return nil
}

func (s *researchImportService) Import(ctx context.Context, in CSVUpload) (*ImportOutcome, error) {
	if err := ValidateCSVUpload(in.FileName, in.Size, s.maxUploadBytes); err != nil {
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	run := &types.ImportRun{FileName: filepath.Base(in.FileName)}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != 0 {
		uid := rd.UserID
		run.UserID = &uid
	}
	run, err := s.runs.Create(dbc, run)
	if err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}

	report, importErr := s.coordinator.Import(ctx, in.Body)

	status := types.RunStatusCommitted
	var schemaErr *researchimport.SchemaError
	var persistErr *researchimport.PersistenceError
	switch {
	case errors.As(importErr, &schemaErr):
		status = types.RunStatusRejected
	case importErr != nil:
		status = types.RunStatusRolledBack
	}

	s.finishRun(ctx, run.ID, status, report)
	s.observe(status, report)

	switch {
	case schemaErr != nil:
		return nil, badRequest(schemaErr.Error())
	case errors.As(importErr, &persistErr):
		code, httpStatus := "import_failed", http.StatusInternalServerError
		if persistErr.Conflict {
			code, httpStatus = "import_conflict", http.StatusConflict
		}
		return nil, apierr.New(httpStatus, code, errors.New(persistErr.PublicMessage()))
	case importErr != nil:
		return nil, fmt.Errorf("import: %w", importErr)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Failed to invalidate organism listing cache", "error", err)
	}
	return &ImportOutcome{RunID: run.ID, Result: report.Result}, nil
}

// finishRun records the outcome on the audit row. It runs outside the import
// transaction, so a rolled back import is still audited.
func (s *researchImportService) finishRun(ctx context.Context, id uint, status string, report *researchimport.Report) {
	var (
		message  string
		rows     int
		statsRaw datatypes.JSON
		diagRaw  datatypes.JSON
	)
	if report != nil {
		message = report.Result.Message
		rows = report.Diagnostics.Rows
		if status == types.RunStatusCommitted {
			if b, err := json.Marshal(report.Stats); err == nil {
				statsRaw = datatypes.JSON(b)
			}
		}
		if b, err := json.Marshal(report.Diagnostics); err == nil {
			diagRaw = datatypes.JSON(b)
		}
	}
	// The request context may already be cancelled.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runs.Finish(dbctx.Context{Ctx: fctx}, id, status, message, rows, statsRaw, diagRaw, time.Now().UTC()); err != nil {
		s.log.Error("Failed to finish import run", "run_id", id, "status", status, "error", err)
	}
}

func (s *researchImportService) observe(status string, report *researchimport.Report) {
	if report == nil {
		s.metrics.ObserveImport(status, 0, 0)
		return
	}
	s.metrics.ObserveImport(status, report.Diagnostics.Rows, report.Duration)
	if status != types.RunStatusCommitted {
		return
	}
	for entity, st := range map[string]researchimport.EntityStats{
		"protein":  report.Stats.Proteins,
		"compound": report.Stats.Compounds,
		"organism": report.Stats.Organisms,
	} {
		s.metrics.AddImportEntities(entity, "existing", st.Existing)
		s.metrics.AddImportEntities(entity, "imported", st.Imported)
	}
	s.metrics.AddImportEntities("research_data", "existing", report.Stats.ResearchData.Existing)
	s.metrics.AddImportEntities("research_data", "imported", report.Stats.ResearchData.Imported)
}

func (s *researchImportService) ListRuns(ctx context.Context, limit int) ([]*types.ImportRun, error) {
	runs, err := s.runs.ListRecent(dbctx.Context{Ctx: ctx}, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}
