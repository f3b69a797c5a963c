package user

import "time"

type User struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"column:username;size:32;not null" json:"username"`
	Email    string `gorm:"column:email;size:64;uniqueIndex;not null" json:"email"`
	Password string `gorm:"column:password;type:text;not null" json:"-"`
	// Cleared on logout; tokens of an inactive user are rejected.
	JWTAuthActive bool      `gorm:"column:jwt_auth_active;not null;default:false" json:"jwt_auth_active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
