package gorm

import (
	"buddhist-lent/pledgeboard/internal/constants"
	"time"
)

type User struct {
	ID                  uint           `gorm:"column:id;primaryKey" json:"id"`
	Name                string         `gorm:"column:name;size:255;not null" json:"name"`
	Email               string         `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash        string         `gorm:"column:password_hash;not null" json:"-"`
	Role                constants.Role `gorm:"column:role;size:16;default:member;index" json:"role"`
	Image               *string        `gorm:"column:image;size:512" json:"image,omitempty"`
	ResetTokenHash      *string        `gorm:"column:reset_token_hash;size:64;index" json:"-"`
	ResetTokenCreatedAt *time.Time     `gorm:"column:reset_token_created_at" json:"-"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}
