package catalog

import "time"

type Protein struct {
	ProteinID   uint      `gorm:"column:protein_id;primaryKey;autoIncrement" json:"protein_id"`
	ProteinName string    `gorm:"column:protein_name;size:100;uniqueIndex;not null" json:"protein_name"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Protein) TableName() string { return "proteins" }
