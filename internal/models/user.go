package models

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"type:varchar(128)" json:"name"`
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(128)" json:"-"`
	GoogleID     string    `gorm:"type:varchar(64);index" json:"-"`
	Provider     string    `gorm:"type:varchar(16);not null;default:local" json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

type Subscriber struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subscriber) TableName() string { return "newsletter_subscribers" }
