package researchimport

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	"github.com/yungbote/osteobridge-backend/internal/ingestion/tabular"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type State int

const (
	StateIdle State = iota
	StateReading
	StateReconcilingProteins
	StateReconcilingCompounds
	StateReconcilingOrganisms
	StateLinking
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateReconcilingProteins:
		return "reconciling_proteins"
	case StateReconcilingCompounds:
		return "reconciling_compounds"
	case StateReconcilingOrganisms:
		return "reconciling_organisms"
	case StateLinking:
		return "linking"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

var ErrRunStarted = errors.New("import run already started")

const successMessage = "Data imported successfully"

type Deps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Proteins     repos.ProteinRepo
	Compounds    repos.CompoundRepo
	Organisms    repos.OrganismRepo
	Stages       repos.ClinicalStageRepo
	ResearchData repos.ResearchDataRepo

	// Associations replaces the ResearchData-backed store when set.
	Associations AssociationStore
}

// Coordinator runs imports. It is safe for concurrent use; each import gets
// its own Run.
type Coordinator struct {
	deps   Deps
	opts   Options
	log    *logger.Logger
	tracer trace.Tracer
}

func NewCoordinator(deps Deps, opts Options) *Coordinator {
	return &Coordinator{
		deps:   deps,
		opts:   opts.normalized(),
		log:    deps.Log.With("module", "ResearchImport"),
		tracer: otel.Tracer("osteobridge/researchimport"),
	}
}

func (c *Coordinator) Options() Options { return c.opts }

// Report is the outcome of one run. Result is what callers see.
type Report struct {
	Result      Result
	Stats       Stats
	Diagnostics Diagnostics
	State       State
	Duration    time.Duration
}

// Import reads src and merges it inside one transaction.
func (c *Coordinator) Import(ctx context.Context, src io.Reader) (*Report, error) {
	return c.NewRun().Execute(ctx, src)
}

// Run is a single, non re-entrant import.
type Run struct {
	c            *Coordinator
	mu           sync.Mutex
	state        State
	started      bool
	onTransition func(from, to State)
}

func (c *Coordinator) NewRun() *Run {
	return &Run{c: c, state: StateIdle}
}

// OnTransition registers fn to observe state changes. Call before Execute.
func (r *Run) OnTransition(fn func(from, to State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTransition = fn
}

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) transition(to State) {
	r.mu.Lock()
	from := r.state
	r.state = to
	fn := r.onTransition
	r.mu.Unlock()
	if fn != nil {
		fn(from, to)
	}
}

// Execute returns a *SchemaError before any write, or a *PersistenceError
// after rolling back. In both cases Report.Result carries the caller message.
func (r *Run) Execute(ctx context.Context, src io.Reader) (*Report, error) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil, ErrRunStarted
	}
	r.started = true
	r.mu.Unlock()

	c := r.c
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "researchimport.import")
	defer span.End()

	report := &Report{}
	finish := func(state State) *Report {
		r.transition(state)
		report.State = state
		report.Duration = time.Since(start)
		return report
	}

	r.transition(StateReading)
	tbl, err := tabular.Read(src, tabular.Options{Required: RequiredColumns})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema")
		c.log.Warn("Import rejected", "error", err)
		report.Result = Result{Success: false, Message: err.Error()}
		return finish(StateRolledBack), err
	}
	report.Diagnostics.Rows = tbl.Len()
	span.SetAttributes(attribute.Int("import.rows", tbl.Len()))

	in := collectNames(tbl, c.opts, &report.Diagnostics)
	diag := &report.Diagnostics
	var stats Stats

	txErr := c.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		r.transition(StateReconcilingProteins)
		proteinIDs, err := c.reconcile(dbc, "proteins", in.proteins, proteinPort{repo: c.deps.Proteins, batch: c.opts.InsertBatchSize}, &stats.Proteins)
		if err != nil {
			return err
		}

		r.transition(StateReconcilingCompounds)
		compoundIDs, err := c.reconcile(dbc, "compounds", in.compounds, compoundPort{
			repo:  c.deps.Compounds,
			iupac: in.iupac,
			batch: c.opts.InsertBatchSize,
			diag:  diag,
		}, &stats.Compounds)
		if err != nil {
			return err
		}

		r.transition(StateReconcilingOrganisms)
		organismIDs, err := c.reconcile(dbc, "organisms", in.organisms, organismPort{
			repo:        c.deps.Organisms,
			defaultType: c.opts.DefaultOrganismType,
			batch:       c.opts.InsertBatchSize,
		}, &stats.Organisms)
		if err != nil {
			return err
		}

		r.transition(StateLinking)
		return c.link(dbc, LinkInput{
			Rows:      tbl.Rows,
			Proteins:  proteinIDs,
			Compounds: compoundIDs,
			Organisms: organismIDs,
		}, diag, &stats.ResearchData)
	})
	if txErr != nil {
		pe := newPersistenceError("commit", txErr)
		span.RecordError(pe)
		span.SetStatus(codes.Error, pe.Step)
		c.log.Error("Import rolled back", "step", pe.Step, "conflict", pe.Conflict, "error", pe.Err)
		report.Result = Result{Success: false, Message: pe.PublicMessage()}
		return finish(StateRolledBack), pe
	}

	report.Stats = stats
	out := stats
	report.Result = Result{Success: true, Message: successMessage, Stats: &out}
	c.log.Info("Import committed",
		"rows", diag.Rows,
		"research_data_imported", stats.ResearchData.Imported,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if *diag != (Diagnostics{Rows: diag.Rows}) {
		c.log.Info("Import absorbed problems", "diagnostics", *diag)
	}
	return finish(StateCommitted), nil
}

func (c *Coordinator) reconcile(dbc dbctx.Context, step string, names []string, port EntityPort, out *EntityStats) (map[string]uint, error) {
	ctx, span := c.tracer.Start(dbc.Context(), "researchimport.reconcile_"+step)
	defer span.End()

	ids, stats, err := Reconcile(dbc.WithCtx(ctx), names, port, c.opts.LookupBatchSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, step)
		return nil, newPersistenceError(step, err)
	}
	*out = stats
	span.SetAttributes(
		attribute.Int("entities.total_found", stats.TotalFound),
		attribute.Int("entities.existing", stats.Existing),
		attribute.Int("entities.imported", stats.Imported),
	)
	c.log.Info("Reconciled entities", "entity", step, "total_found", stats.TotalFound, "existing", stats.Existing, "imported", stats.Imported)
	return ids, nil
}

func (c *Coordinator) link(dbc dbctx.Context, in LinkInput, diag *Diagnostics, out *LinkStats) error {
	ctx, span := c.tracer.Start(dbc.Context(), "researchimport.link")
	defer span.End()
	dbc = dbc.WithCtx(ctx)

	if c.deps.Stages != nil {
		ids, err := c.deps.Stages.ListIDs(dbc)
		if err != nil {
			span.RecordError(err)
			return newPersistenceError("research_data", err)
		}
		in.ValidStages = make(map[uint]struct{}, len(ids))
		for _, id := range ids {
			in.ValidStages[id] = struct{}{}
		}
	}

	store := c.deps.Associations
	if store == nil {
		store = associationPort{repo: c.deps.ResearchData, batch: c.opts.InsertBatchSize}
	}
	stats, err := Link(dbc, in, store, c.opts, c.log, diag)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "research_data")
		return newPersistenceError("research_data", err)
	}
	*out = stats
	span.SetAttributes(
		attribute.Int("associations.total_processed", stats.TotalProcessed),
		attribute.Int("associations.existing", stats.Existing),
		attribute.Int("associations.imported", stats.Imported),
	)
	c.log.Info("Linked research data", "total_processed", stats.TotalProcessed, "existing", stats.Existing, "imported", stats.Imported)
	return nil
}

type importNames struct {
	proteins  []string
	compounds []string
	organisms []string
	iupac     map[string]string
}

func collectNames(tbl *tabular.Table, opts Options, diag *Diagnostics) importNames {
	in := importNames{
		proteins:  tbl.Column(ColTarget),
		compounds: tbl.Column(ColCompoundName),
		iupac:     make(map[string]string),
	}
	for _, row := range tbl.Rows {
		name := strings.TrimSpace(row.Get(ColCompoundName))
		if iupac := strings.TrimSpace(row.Get(ColIUPACName)); name != "" && iupac != "" {
			if _, ok := in.iupac[name]; !ok {
				in.iupac[name] = iupac
			}
		}
		in.organisms = append(in.organisms, SplitField(row.Get(ColOrganisms), opts.OrganismDelimiter)...)
	}
	_, blankProteins := DistinctNames(in.proteins)
	_, blankCompounds := DistinctNames(in.compounds)
	diag.BlankNames = blankProteins + blankCompounds
	return in
}
