package catalog

import "time"

// ResearchData links one clinical stage, protein, compound, organism and origin.
// The five columns together are unique (uq_research_data_composite).
type ResearchData struct {
	DataID     uint      `gorm:"column:data_id;primaryKey;autoIncrement" json:"data_id"`
	StageID    uint      `gorm:"column:stage_id;not null;index;uniqueIndex:uq_research_data_composite,priority:1" json:"stage_id"`
	ProteinID  uint      `gorm:"column:protein_id;not null;index;uniqueIndex:uq_research_data_composite,priority:2" json:"protein_id"`
	CompoundID uint      `gorm:"column:compound_id;not null;index;uniqueIndex:uq_research_data_composite,priority:3" json:"compound_id"`
	OrganismID uint      `gorm:"column:organism_id;not null;index;uniqueIndex:uq_research_data_composite,priority:4" json:"organism_id"`
	CountryID  uint      `gorm:"column:country_id;not null;index;uniqueIndex:uq_research_data_composite,priority:5" json:"country_id"`
	ModelID    *uint     `gorm:"column:model_id;index" json:"model_id,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ResearchData) TableName() string { return "research_data" }

// AssociationKey is the composite identity of a ResearchData row.
type AssociationKey struct {
	StageID    uint
	ProteinID  uint
	CompoundID uint
	OrganismID uint
	CountryID  uint
}

func (r ResearchData) Key() AssociationKey {
	return AssociationKey{
		StageID:    r.StageID,
		ProteinID:  r.ProteinID,
		CompoundID: r.CompoundID,
		OrganismID: r.OrganismID,
		CountryID:  r.CountryID,
	}
}
