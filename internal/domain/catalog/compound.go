package catalog

import "time"

type Compound struct {
	CompoundID   uint    `gorm:"column:compound_id;primaryKey;autoIncrement" json:"compound_id"`
	CompoundName string  `gorm:"column:compound_name;size:100;uniqueIndex;not null" json:"compound_name"`
	PubchemID    *string `gorm:"column:pubchem_id;size:20;uniqueIndex" json:"pubchem_id,omitempty"`
	// Systematic (IUPAC) name. Written once on creation; imports never overwrite it.
	CompoundIUPAC string    `gorm:"column:compound_iupac;type:text;not null" json:"compound_iupac"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Compound) TableName() string { return "compounds" }
