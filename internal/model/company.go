package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is a trading entity. The hierarchy is strictly two levels: a parent
// company has ParentID == nil, a branch points at a parent that itself has no
// parent. Branches sell parent-owned stock under their own invoices.
type Company struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string     `gorm:"not null"`
	Code     string     `gorm:"uniqueIndex;not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	Active   bool       `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Parent *Company `gorm:"foreignKey:ParentID"`
}

// IsBranch reports whether the company sells under a parent.
func (c *Company) IsBranch() bool { return c.ParentID != nil }
