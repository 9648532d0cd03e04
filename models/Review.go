package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review keeps a snapshot of the reviewer's name taken at creation time.
type Review struct {
	ID         string    `gorm:"primaryKey;size:36" json:"_id"`
	FirstName  string    `gorm:"not null" json:"firstName"`
	LastName   string    `gorm:"not null" json:"lastName"`
	Content    string    `gorm:"not null" json:"content"`
	Rating     int       `gorm:"not null" json:"rating"`
	GameID     string    `gorm:"column:game_id;size:36;not null;index" json:"game"`
	CustomerID string    `gorm:"column:customer_id;size:36;not null;index" json:"customer"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type ReviewInput struct {
	Content string `json:"content" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}
