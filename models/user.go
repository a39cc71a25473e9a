package models

import "time"

type User struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"type:varchar(255);index" json:"email"`
	Password   string    `gorm:"type:varchar(255)" json:"-"`
	Nickname   string    `gorm:"type:varchar(100)" json:"nickname"`
	AvatarURL  string    `gorm:"type:varchar(500)" json:"avatar_url"`
	Provider   string    `gorm:"type:varchar(20);index:idx_provider_identity" json:"provider"`
	ProviderID string    `gorm:"type:varchar(100);index:idx_provider_identity" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
