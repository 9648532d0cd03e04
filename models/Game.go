package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GameStatus string

const (
	StatusPublished   GameStatus = "Publicado"
	StatusUnpublished GameStatus = "Despublicado"
)

func (s GameStatus) Valid() bool {
	return s == StatusPublished || s == StatusUnpublished
}

type Requirements struct {
	CPU    string `gorm:"not null" json:"cpu" validate:"required"`
	Memory string `gorm:"not null" json:"memory" validate:"required"`
	GPU    string `gorm:"not null" json:"gpu" validate:"required"`
}

type Game struct {
	ID                      string       `gorm:"primaryKey;size:36" json:"_id"`
	Title                   string       `gorm:"not null;index" json:"title"`
	Description             string       `gorm:"not null" json:"description"`
	Category                string       `gorm:"not null;index" json:"category"`
	Price                   float64      `gorm:"not null;index" json:"price"`
	OS                      string       `gorm:"column:os;not null" json:"os"`
	Language                string       `gorm:"not null" json:"language"`
	PlayersQty              string       `gorm:"not null" json:"playersQty"`
	MinimumRequirements     Requirements `gorm:"embedded;embeddedPrefix:min_" json:"minimumRequirements"`
	RecommendedRequirements Requirements `gorm:"embedded;embeddedPrefix:rec_" json:"recommendedRequirements"`
	Status                  GameStatus   `gorm:"not null;default:Despublicado;index" json:"status"`
	DeveloperID             string       `gorm:"column:developer_id;size:36;not null;index" json:"developer"`
	ImageURL                string       `gorm:"not null" json:"imageUrl"`
	WishlistCount           int64        `gorm:"not null;default:0" json:"wishlistCount"`
	Views                   int64        `gorm:"not null;default:0" json:"views"`
	Purchases               int64        `gorm:"not null;default:0" json:"purchases"`
	ConversionRate          float64      `gorm:"not null;default:0" json:"conversionRate"`
	CreatedAt               time.Time    `json:"createdAt"`
	UpdatedAt               time.Time    `json:"updatedAt"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = StatusUnpublished
	}
	return nil
}

// BeforeSave keeps conversionRate consistent with views and purchases on
// every full save. Counter updates issued as SQL expressions recompute it
// in the same statement instead (see store.IncrementViews).
func (g *Game) BeforeSave(tx *gorm.DB) error {
	g.ConversionRate = ConversionRate(g.Purchases, g.Views)
	return nil
}

// ConversionRate returns purchases/views*100, or 0 when there are no views.
func ConversionRate(purchases, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(purchases) / float64(views) * 100
}

// GameSummary is the projection used by search, wishlist and purchase
// listings.
type GameSummary struct {
	ID       string  `json:"_id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

func (g *Game) Summary() GameSummary {
	return GameSummary{ID: g.ID, Title: g.Title, Category: g.Category, Price: g.Price, ImageURL: g.ImageURL}
}

// GameListing is a catalog row with the average rating joined from reviews.
// AverageRating is nil for games without reviews.
type GameListing struct {
	Game
	AverageRating *float64 `json:"averageRating"`
}

// GameStats is one row of a developer's performance table.
type GameStats struct {
	ID             string  `json:"_id"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	ImageURL       string  `json:"imageUrl"`
	Status         string  `json:"status"`
	Views          int64   `json:"views"`
	Purchases      int64   `json:"purchases"`
	ConversionRate float64 `json:"conversionRate"`
	WishlistCount  int64   `json:"wishlistCount"`
}

// GameInput - body of POST /games; every field is required.
type GameInput struct {
	Title                   string       `json:"title" validate:"required"`
	Description             string       `json:"description" validate:"required"`
	Category                string       `json:"category" validate:"required"`
	Price                   *float64     `json:"price" validate:"required,gte=0"`
	OS                      string       `json:"os" validate:"required,oneof=Windows Linux Mac"`
	Language                string       `json:"language" validate:"required,oneof=Español Inglés"`
	PlayersQty              string       `json:"playersQty" validate:"required,oneof=Single-player Multi-player"`
	MinimumRequirements     Requirements `json:"minimumRequirements"`
	RecommendedRequirements Requirements `json:"recommendedRequirements"`
	Status                  string       `json:"status" validate:"required,oneof=Publicado Despublicado"`
	ImageURL                string       `json:"imageUrl" validate:"required"`
}

func (in GameInput) ToGame(developerID string) Game {
	return Game{
		Title:                   in.Title,
		Description:             in.Description,
		Category:                in.Category,
		Price:                   *in.Price,
		OS:                      in.OS,
		Language:                in.Language,
		PlayersQty:              in.PlayersQty,
		MinimumRequirements:     in.MinimumRequirements,
		RecommendedRequirements: in.RecommendedRequirements,
		Status:                  GameStatus(in.Status),
		DeveloperID:             developerID,
		ImageURL:                in.ImageURL,
	}
}

// UpdateGameInput - body of PUT /games/:id; nil fields are left untouched.
type UpdateGameInput struct {
	Title                   *string       `json:"title" validate:"omitempty,min=1"`
	Description             *string       `json:"description" validate:"omitempty,min=1"`
	Category                *string       `json:"category" validate:"omitempty,min=1"`
	Price                   *float64      `json:"price" validate:"omitempty,gte=0"`
	OS                      *string       `json:"os" validate:"omitempty,oneof=Windows Linux Mac"`
	Language                *string       `json:"language" validate:"omitempty,oneof=Español Inglés"`
	PlayersQty              *string       `json:"playersQty" validate:"omitempty,oneof=Single-player Multi-player"`
	MinimumRequirements     *Requirements `json:"minimumRequirements"`
	RecommendedRequirements *Requirements `json:"recommendedRequirements"`
	Status                  *string       `json:"status" validate:"omitempty,oneof=Publicado Despublicado"`
	ImageURL                *string       `json:"imageUrl" validate:"omitempty,min=1"`
}

// Apply copies the provided fields onto g.
func (in UpdateGameInput) Apply(g *Game) {
	if in.Title != nil {
		g.Title = *in.Title
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	if in.Category != nil {
		g.Category = *in.Category
	}
	if in.Price != nil {
		g.Price = *in.Price
	}
	if in.OS != nil {
		g.OS = *in.OS
	}
	if in.Language != nil {
		g.Language = *in.Language
	}
	if in.PlayersQty != nil {
		g.PlayersQty = *in.PlayersQty
	}
	if in.MinimumRequirements != nil {
		g.MinimumRequirements = *in.MinimumRequirements
	}
	if in.RecommendedRequirements != nil {
		g.RecommendedRequirements = *in.RecommendedRequirements
	}
	if in.Status != nil {
		g.Status = GameStatus(*in.Status)
	}
	if in.ImageURL != nil {
		g.ImageURL = *in.ImageURL
	}
}

type StatusInput struct {
	Status string `json:"status"`
}
