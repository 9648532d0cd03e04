package models

import "time"

// WishlistEntry links a customer to a wishlisted game. The auto-increment
// ID gives the wishlist its insertion order.
type WishlistEntry struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CustomerID string    `gorm:"column:customer_id;size:36;not null;uniqueIndex:idx_wishlist_customer_game" json:"customerId"`
	GameID     string    `gorm:"column:game_id;size:36;not null;uniqueIndex:idx_wishlist_customer_game;index" json:"gameId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WishlistInput - body of POST /customers/:id/wishlist
type WishlistInput struct {
	GameID string `json:"gameId" validate:"required"`
}
