package researchimport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
)

type memPort struct {
	ids         map[string]uint
	next        uint
	lookupCalls [][]string
	inserted    []string
	insertErr   error
}

func newMemPort(existing ...string) *memPort {
	p := &memPort{ids: map[string]uint{}}
	for _, n := range existing {
		p.next++
		p.ids[n] = p.next
	}
	return p
}

func (p *memPort) Lookup(_ dbctx.Context, names []string) (map[string]uint, error) {
	p.lookupCalls = append(p.lookupCalls, append([]string(nil), names...))
	out := map[string]uint{}
	for _, n := range names {
		if id, ok := p.ids[n]; ok {
			out[n] = id
		}
	}
	return out, nil
}

func (p *memPort) Insert(_ dbctx.Context, names []string) (map[string]uint, error) {
	if p.insertErr != nil {
		return nil, p.insertErr
	}
	out := map[string]uint{}
	for _, n := range names {
		p.next++
		p.ids[n] = p.next
		out[n] = p.next
		p.inserted = append(p.inserted, n)
	}
	return out, nil
}

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func TestReconcileInsertsOnlyMissingInDiscoveryOrder(t *testing.T) {
	port := newMemPort("BMP2")
	ids, stats, err := Reconcile(bg(), []string{" RANKL", "BMP2", "", "RANKL ", "SOST", "   "}, port, 500)
	require.NoError(t, err)

	assert.Equal(t, EntityStats{TotalFound: 3, Existing: 1, Imported: 2}, stats)
	assert.Equal(t, []string{"RANKL", "SOST"}, port.inserted)
	assert.Len(t, ids, 3)
	assert.Equal(t, uint(1), ids["BMP2"])
	assert.NotContains(t, ids, "")
}

func TestReconcileIsIdempotent(t *testing.T) {
	port := newMemPort()
	names := []string{"A", "B", "C"}

	first, s1, err := Reconcile(bg(), names, port, 2)
	require.NoError(t, err)
	second, s2, err := Reconcile(bg(), names, port, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, s1.Imported)
	assert.Equal(t, EntityStats{TotalFound: 3, Existing: 3, Imported: 0}, s2)
	assert.Len(t, port.inserted, 3)
}

func TestReconcileChunksLookups(t *testing.T) {
	port := newMemPort()
	_, _, err := Reconcile(bg(), []string{"a", "b", "c", "d", "e"}, port, 2)
	require.NoError(t, err)

	require.Len(t, port.lookupCalls, 3)
	assert.Equal(t, []string{"a", "b"}, port.lookupCalls[0])
	assert.Equal(t, []string{"e"}, port.lookupCalls[2])
}

func TestReconcileEmptyInputTouchesNothing(t *testing.T) {
	port := newMemPort()
	ids, stats, err := Reconcile(bg(), []string{"", "  "}, port, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, EntityStats{}, stats)
	assert.Empty(t, port.lookupCalls)
}

func TestReconcilePropagatesInsertFailure(t *testing.T) {
	boom := errors.New("boom")
	port := newMemPort()
	port.insertErr = boom

	_, _, err := Reconcile(bg(), []string{"X"}, port, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDistinctNamesCountsBlanks(t *testing.T) {
	names, blanks := DistinctNames([]string{"a", " ", "a", "", "b"})
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, 2, blanks)
}
