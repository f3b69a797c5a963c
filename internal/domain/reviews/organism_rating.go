package reviews

import "time"

const (
	MinRating     = 1
	MaxRating     = 5
	MaxReviewLen  = 1000
	AnonymousUser = "Anonymous"
)

type OrganismRating struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrganismID    uint      `gorm:"column:organism_id;not null;index" json:"organism_id"`
	Rating        int       `gorm:"column:rating;not null" json:"rating"`
	Review        string    `gorm:"column:review;type:text" json:"review"`
	ReviewerName  string    `gorm:"column:reviewer_name;size:255;default:Anonymous" json:"reviewer_name"`
	ReviewerEmail string    `gorm:"column:reviewer_email;size:255;default:Anonymous" json:"reviewer_email"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (OrganismRating) TableName() string { return "organism_ratings" }
