package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Phone     *string
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"` // registering company
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Phone     *string
	// Foreign suppliers invoice in a non-base currency; purchases record the
	// exchange rate at creation time.
	IsForeign bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
