package user

import "time"

type JWTTokenBlocklist struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JWTToken  string    `gorm:"column:jwt_token;size:512;uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (JWTTokenBlocklist) TableName() string { return "jwt_token_blocklist" }
