package catalog

import "time"

const (
	OrganismTypeNatural   = "natural"
	OrganismTypeProcessed = "processed"
)

type Organism struct {
	OrganismID   uint      `gorm:"column:organism_id;primaryKey;autoIncrement" json:"organism_id"`
	OrganismName string    `gorm:"column:organism_name;size:150;uniqueIndex;not null" json:"organism_name"`
	OrganismType string    `gorm:"column:organism_type;size:20;not null;default:natural" json:"organism_type"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Organism) TableName() string { return "organisms" }

// ValidOrganismType reports whether t is one of the known classification tags.
func ValidOrganismType(t string) bool {
	return t == OrganismTypeNatural || t == OrganismTypeProcessed
}
