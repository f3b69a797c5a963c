package researchimport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/ingestion/tabular"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

// AssociationStore is the persistence seen by Link.
type AssociationStore interface {
	ExistingKeys(dbc dbctx.Context, keys []types.AssociationKey) (map[types.AssociationKey]struct{}, error)
	Insert(dbc dbctx.Context, keys []types.AssociationKey) error
}

type LinkInput struct {
	Rows      []tabular.Row
	Proteins  map[string]uint
	Compounds map[string]uint
	Organisms map[string]uint
	// ValidStages restricts stage codes to the catalog. Nil accepts any
	// positive code.
	ValidStages map[uint]struct{}
}

// Link expands rows into association tuples and inserts the ones not yet
// persisted, in row order.
func Link(dbc dbctx.Context, in LinkInput, store AssociationStore, opts Options, log *logger.Logger, diag *Diagnostics) (LinkStats, error) {
	if diag == nil {
		diag = &Diagnostics{}
	}
	work := buildWorklist(in, opts, log, diag)
	stats := LinkStats{TotalProcessed: len(work)}
	if len(work) == 0 {
		return stats, nil
	}

	distinct := make([]types.AssociationKey, 0, len(work))
	seen := make(map[types.AssociationKey]struct{}, len(work))
	for _, k := range work {
		if _, dup := seen[k]; dup {
			diag.DuplicateTuples++
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, k)
	}

	batch := opts.LinkBatchSize
	if batch <= 0 {
		batch = DefaultOptions().LinkBatchSize
	}
	persisted := make(map[types.AssociationKey]struct{})
	for start := 0; start < len(distinct); start += batch {
		end := min(start+batch, len(distinct))
		found, err := store.ExistingKeys(dbc, distinct[start:end])
		if err != nil {
			return LinkStats{}, fmt.Errorf("existing associations: %w", err)
		}
		for k := range found {
			persisted[k] = struct{}{}
		}
	}
	stats.Existing = len(persisted)

	fresh := make([]types.AssociationKey, 0, len(distinct)-len(persisted))
	for _, k := range distinct {
		if _, ok := persisted[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	if len(fresh) > 0 {
		if err := store.Insert(dbc, fresh); err != nil {
			return LinkStats{}, fmt.Errorf("insert associations: %w", err)
		}
	}
	stats.Imported = len(fresh)
	return stats, nil
}

func buildWorklist(in LinkInput, opts Options, log *logger.Logger, diag *Diagnostics) []types.AssociationKey {
	var work []types.AssociationKey
	for _, row := range in.Rows {
		proteinID, okP := in.Proteins[strings.TrimSpace(row.Get(ColTarget))]
		compoundID, okC := in.Compounds[strings.TrimSpace(row.Get(ColCompoundName))]
		if !okP || !okC {
			diag.RowsMissingEntity++
			continue
		}

		stages := parseStages(row, opts.StageDelimiter, in.ValidStages, log, diag)
		if len(stages) == 0 {
			continue
		}
		for _, name := range SplitField(row.Get(ColOrganisms), opts.OrganismDelimiter) {
			organismID, ok := in.Organisms[name]
			if !ok {
				diag.UnresolvedOrganisms++
				continue
			}
			for _, stageID := range stages {
				work = append(work, types.AssociationKey{
					StageID:    stageID,
					ProteinID:  proteinID,
					CompoundID: compoundID,
					OrganismID: organismID,
					CountryID:  DefaultOriginID,
				})
			}
		}
	}
	return work
}

func parseStages(row tabular.Row, delim string, valid map[uint]struct{}, log *logger.Logger, diag *Diagnostics) []uint {
	segments := SplitField(row.Get(ColClinicalStage), delim)
	out := make([]uint, 0, len(segments))
	for _, seg := range segments {
		code, ok := ParseStageCode(seg)
		if !ok {
			diag.UnparseableStages++
			if log != nil {
				log.Warn("Skipping unparseable clinical stage",
					"error", &ValidationError{Line: row.Line, Column: ColClinicalStage, Value: seg, Reason: "not an integer stage code"},
				)
			}
			continue
		}
		if valid != nil {
			if _, known := valid[code]; !known {
				diag.UnknownStages++
				if log != nil {
					log.Warn("Skipping unknown clinical stage", "line", row.Line, "stage", code)
				}
				continue
			}
		}
		out = append(out, code)
	}
	return out
}

// SplitField splits a multi-valued cell, trimming segments and dropping
// empty ones.
func SplitField(raw, delim string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, delim)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseStageCode accepts positive integers. Integral decimals such as "2.0",
// which spreadsheet exports produce, are accepted too.
func ParseStageCode(s string) (uint, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint(n), n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 1 || f > math.MaxUint32 {
		return 0, false
	}
	return uint(f), true
}
