package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"        json:"id"`
	Email        string     `gorm:"size:254;uniqueIndex;not null"   json:"email"`
	PasswordHash string     `gorm:"not null"                        json:"-"`
	FirstName    string     `gorm:"size:150"                        json:"first_name"`
	LastName     string     `gorm:"size:150"                        json:"last_name"`
	PhoneNumber  string     `gorm:"size:15"                         json:"phone_number"`
	Address      string     `                                       json:"address"`
	IsActive     bool       `gorm:"not null"                        json:"-"`
	IsStaff      bool       `gorm:"not null"                        json:"-"`
	IsSuperuser  bool       `gorm:"not null"                        json:"-"`
	DateJoined   time.Time  `gorm:"autoCreateTime"                  json:"-"`
	LastLogin    *time.Time `                                       json:"-"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity    int             `gorm:"not null"`
	CreatorID   uint            `gorm:"index;not null"`
	Creator     User            `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
}

// BlacklistedToken records a revoked refresh token by its jti.
type BlacklistedToken struct {
	ID        uint      `gorm:"primaryKey"`
	JTI       string    `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func All() []any {
	return []any{&User{}, &Product{}, &BlacklistedToken{}}
}
