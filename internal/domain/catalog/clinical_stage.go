package catalog

import "time"

// ClinicalStage is reference data maintained outside the import path.
type ClinicalStage struct {
	StageID   uint      `gorm:"column:stage_id;primaryKey;autoIncrement" json:"stage_id"`
	StageName string    `gorm:"column:stage_name;size:50;uniqueIndex;not null" json:"stage_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ClinicalStage) TableName() string { return "clinical_stages" }
