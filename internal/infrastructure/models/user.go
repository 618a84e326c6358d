package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email         string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash  string     `gorm:"type:varchar(255);not null"`
	Role          string     `gorm:"type:varchar(50);not null;default:'user'"`
	Verified      bool       `gorm:"not null;default:false"`
	VerifyCode    *string    `gorm:"type:varchar(64)"`
	CodeExpiresAt *time.Time `gorm:"type:timestamptz"`
	FirstName     string     `gorm:"type:varchar(100)"`
	LastName      string     `gorm:"type:varchar(100)"`
	Color         int        `gorm:"not null;default:0"`
	Image         *string    `gorm:"type:varchar(512)"`
	ProfileSetup  bool       `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
