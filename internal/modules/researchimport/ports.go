package researchimport

import (
	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
)

func chunks[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) <= size {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}

type proteinPort struct {
	repo  repos.ProteinRepo
	batch int
}

func (p proteinPort) Lookup(dbc dbctx.Context, names []string) (map[string]uint, error) {
	rows, err := p.repo.GetByNames(dbc, names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint, len(rows))
	for _, r := range rows {
		out[r.ProteinName] = r.ProteinID
	}
	return out, nil
}

func (p proteinPort) Insert(dbc dbctx.Context, names []string) (map[string]uint, error) {
	out := make(map[string]uint, len(names))
	for _, chunk := range chunks(names, p.batch) {
		rows := make([]*types.Protein, 0, len(chunk))
		for _, n := range chunk {
			rows = append(rows, &types.Protein{ProteinName: n})
		}
		created, err := p.repo.Create(dbc, rows)
		if err != nil {
			return nil, err
		}
		for _, r := range created {
			out[r.ProteinName] = r.ProteinID
		}
	}
	return out, nil
}

// compoundPort carries the IUPAC name seen first for each compound. It is
// only used on insert; existing compounds keep theirs.
type compoundPort struct {
	repo  repos.CompoundRepo
	iupac map[string]string
	batch int
	diag  *Diagnostics
}

func (p compoundPort) Lookup(dbc dbctx.Context, names []string) (map[string]uint, error) {
	rows, err := p.repo.GetByNames(dbc, names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint, len(rows))
	for _, r := range rows {
		out[r.CompoundName] = r.CompoundID
	}
	return out, nil
}

func (p compoundPort) Insert(dbc dbctx.Context, names []string) (map[string]uint, error) {
	out := make(map[string]uint, len(names))
	for _, chunk := range chunks(names, p.batch) {
		rows := make([]*types.Compound, 0, len(chunk))
		for _, n := range chunk {
			iupac := p.iupac[n]
			if iupac == "" && p.diag != nil {
				p.diag.CompoundsWithoutIUPAC++
			}
			rows = append(rows, &types.Compound{CompoundName: n, CompoundIUPAC: iupac})
		}
		created, err := p.repo.Create(dbc, rows)
		if err != nil {
			return nil, err
		}
		for _, r := range created {
			out[r.CompoundName] = r.CompoundID
		}
	}
	return out, nil
}

type organismPort struct {
	repo        repos.OrganismRepo
	defaultType string
	batch       int
}

func (p organismPort) Lookup(dbc dbctx.Context, names []string) (map[string]uint, error) {
	rows, err := p.repo.GetByNames(dbc, names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint, len(rows))
	for _, r := range rows {
		out[r.OrganismName] = r.OrganismID
	}
	return out, nil
}

func (p organismPort) Insert(dbc dbctx.Context, names []string) (map[string]uint, error) {
	out := make(map[string]uint, len(names))
	for _, chunk := range chunks(names, p.batch) {
		rows := make([]*types.Organism, 0, len(chunk))
		for _, n := range chunk {
			rows = append(rows, &types.Organism{OrganismName: n, OrganismType: p.defaultType})
		}
		created, err := p.repo.Create(dbc, rows)
		if err != nil {
			return nil, err
		}
		for _, r := range created {
			out[r.OrganismName] = r.OrganismID
		}
	}
	return out, nil
}

type associationPort struct {
	repo  repos.ResearchDataRepo
	batch int
}

func (p associationPort) ExistingKeys(dbc dbctx.Context, keys []types.AssociationKey) (map[types.AssociationKey]struct{}, error) {
	return p.repo.ExistingKeys(dbc, keys)
}

func (p associationPort) Insert(dbc dbctx.Context, keys []types.AssociationKey) error {
	for _, chunk := range chunks(keys, p.batch) {
		rows := make([]*types.ResearchData, 0, len(chunk))
		for _, k := range chunk {
			rows = append(rows, &types.ResearchData{
				StageID:    k.StageID,
				ProteinID:  k.ProteinID,
				CompoundID: k.CompoundID,
				OrganismID: k.OrganismID,
				CountryID:  k.CountryID,
			})
		}
		if _, err := p.repo.Create(dbc, rows); err != nil {
			return err
		}
	}
	return nil
}
