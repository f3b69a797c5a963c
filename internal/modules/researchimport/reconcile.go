package researchimport

import (
	"fmt"
	"strings"

	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
)

// EntityPort is the persistence seen by Reconcile for one entity kind.
type EntityPort interface {
	// Lookup returns ids for the names that already exist. Missing names are
	// absent from the map.
	Lookup(dbc dbctx.Context, names []string) (map[string]uint, error)
	// Insert creates names in the given order and returns their ids.
	Insert(dbc dbctx.Context, names []string) (map[string]uint, error)
}

// DistinctNames trims names and drops blanks and repeats, keeping first
// occurrence order. It also returns how many blanks were dropped.
func DistinctNames(names []string) ([]string, int) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	blanks := 0
	for _, raw := range names {
		n := strings.TrimSpace(raw)
		if n == "" {
			blanks++
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, blanks
}

// Reconcile resolves names against the catalog, inserting only those not
// found, and returns the full name to id mapping. Lookups are issued in
// chunks of batchSize. A second call with the same names inserts nothing.
func Reconcile(dbc dbctx.Context, names []string, port EntityPort, batchSize int) (map[string]uint, EntityStats, error) {
	distinct, _ := DistinctNames(names)
	stats := EntityStats{TotalFound: len(distinct)}
	ids := make(map[string]uint, len(distinct))
	if len(distinct) == 0 {
		return ids, stats, nil
	}
	if batchSize <= 0 {
		batchSize = len(distinct)
	}

	for start := 0; start < len(distinct); start += batchSize {
		end := min(start+batchSize, len(distinct))
		found, err := port.Lookup(dbc, distinct[start:end])
		if err != nil {
			return nil, EntityStats{}, fmt.Errorf("lookup: %w", err)
		}
		for name, id := range found {
			ids[name] = id
		}
	}
	stats.Existing = len(ids)

	missing := make([]string, 0, len(distinct)-len(ids))
	for _, n := range distinct {
		if _, ok := ids[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return ids, stats, nil
	}

	created, err := port.Insert(dbc, missing)
	if err != nil {
		return nil, EntityStats{}, fmt.Errorf("insert: %w", err)
	}
	for _, n := range missing {
		id, ok := created[n]
		if !ok || id == 0 {
			return nil, EntityStats{}, fmt.Errorf("insert: no id returned for %q", n)
		}
		ids[n] = id
	}
	stats.Imported = len(missing)
	return ids, stats, nil
}
