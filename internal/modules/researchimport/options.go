package researchimport

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
)

const (
	ColTarget        = "Target"
	ColCompoundName  = "compound_name"
	ColIUPACName     = "iupac_name"
	ColOrganisms     = "organisms"
	ColClinicalStage = "clinical_stage"

	// DefaultOriginID is the origin (country_id) stamped on every imported
	// association. Multi-origin import is not supported.
	DefaultOriginID uint = 1
)

// RequiredColumns must all be present in an uploaded file.
var RequiredColumns = []string{ColTarget, ColCompoundName, ColIUPACName, ColOrganisms, ColClinicalStage}

type Options struct {
	LookupBatchSize     int    `yaml:"lookup_batch_size"`
	LinkBatchSize       int    `yaml:"link_batch_size"`
	InsertBatchSize     int    `yaml:"insert_batch_size"`
	DefaultOrganismType string `yaml:"default_organism_type"`
	OrganismDelimiter   string `yaml:"organism_delimiter"`
	StageDelimiter      string `yaml:"stage_delimiter"`
}

func DefaultOptions() Options {
	return Options{
		LookupBatchSize:     500,
		LinkBatchSize:       100,
		InsertBatchSize:     500,
		DefaultOrganismType: types.OrganismTypeNatural,
		OrganismDelimiter:   "|",
		StageDelimiter:      ",",
	}
}

// LoadOptions overlays the YAML file at path onto the defaults. An empty path
// returns the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	path = strings.TrimSpace(path)
	if path == "" {
		return opts, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read import options: %w", err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("parse import options: %w", err)
	}
	if !types.ValidOrganismType(opts.DefaultOrganismType) && opts.DefaultOrganismType != "" {
		return opts, fmt.Errorf("default_organism_type %q is not a known organism type", opts.DefaultOrganismType)
	}
	return opts.normalized(), nil
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.LookupBatchSize <= 0 {
		o.LookupBatchSize = d.LookupBatchSize
	}
	if o.LinkBatchSize <= 0 {
		o.LinkBatchSize = d.LinkBatchSize
	}
	if o.InsertBatchSize <= 0 {
		o.InsertBatchSize = d.InsertBatchSize
	}
	if o.DefaultOrganismType == "" {
		o.DefaultOrganismType = d.DefaultOrganismType
	}
	if o.OrganismDelimiter == "" {
		o.OrganismDelimiter = d.OrganismDelimiter
	}
	if o.StageDelimiter == "" {
		o.StageDelimiter = d.StageDelimiter
	}
	return o
}
