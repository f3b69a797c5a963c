package catalog

import "time"

// MolecularModel points at a stored PDB structure for a protein/compound pair.
type MolecularModel struct {
	ModelID    uint      `gorm:"column:model_id;primaryKey;autoIncrement" json:"model_id"`
	ProteinID  *uint     `gorm:"column:protein_id;index;uniqueIndex:uq_molecular_models_pair,priority:1" json:"protein_id"`
	CompoundID *uint     `gorm:"column:compound_id;index;uniqueIndex:uq_molecular_models_pair,priority:2" json:"compound_id"`
	ModelName  string    `gorm:"column:model_name;size:50;not null" json:"model_name"`
	FilePath   string    `gorm:"column:file_path;size:255" json:"file_path"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MolecularModel) TableName() string { return "molecular_models" }
