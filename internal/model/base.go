package model

import (
	"time"
)

// GORM manages CreatedAt and UpdatedAt automatically.
type BaseEntity struct {
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}
