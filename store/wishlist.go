package store

import (
	"context"

	"gameflix/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AddToWishlist appends gameID to the customer's wishlist and increments the
// game's wishlist counter in one transaction.
func (s *Store) AddToWishlist(ctx context.Context, customerID, gameID string) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Game{}).Where("id = ?", gameID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check game")
		}
		if count == 0 {
			return ErrGameNotFound
		}
		if err := tx.Model(&models.WishlistEntry{}).
			Where("customer_id = ? AND game_id = ?", customerID, gameID).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "check wishlist")
		}
		if count > 0 {
			return ErrAlreadyInWishlist
		}
		entry := models.WishlistEntry{CustomerID: customerID, GameID: gameID}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyInWishlist
			}
			return errors.Wrap(err, "add wishlist entry")
		}
		return errors.Wrap(shiftWishlistCount(tx, gameID, true), "increment wishlist count")
	})
}

// RemoveFromWishlist deletes the entry and decrements the counter, which
// never drops below zero. A deleted game leaves nothing to decrement.
func (s *Store) RemoveFromWishlist(ctx context.Context, customerID, gameID string) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("customer_id = ? AND game_id = ?", customerID, gameID).Delete(&models.WishlistEntry{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "remove wishlist entry")
		}
		if res.RowsAffected == 0 {
			return ErrNotInWishlist
		}
		return errors.Wrap(shiftWishlistCount(tx, gameID, false), "decrement wishlist count")
	})
}

// WishlistGameIDs returns the ids in insertion order, including ids of games
// deleted since.
func (s *Store) WishlistGameIDs(ctx context.Context, customerID string) ([]string, error) {
	var ids []string
	err := s.conn(ctx).Model(&models.WishlistEntry{}).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Pluck("game_id", &ids).Error
	return ids, errors.Wrap(err, "list wishlist ids")
}

// WishlistGames returns the wishlisted games that still exist, in insertion
// order.
func (s *Store) WishlistGames(ctx context.Context, customerID string) ([]models.GameSummary, error) {
	var games []models.Game
	err := s.conn(ctx).Model(&models.Game{}).
		Select("games.*").
		Joins("JOIN wishlist_entries ON wishlist_entries.game_id = games.id").
		Where("wishlist_entries.customer_id = ?", customerID).
		Order("wishlist_entries.id ASC").
		Find(&games).Error
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist games")
	}
	out := make([]models.GameSummary, 0, len(games))
	for i := range games {
		out = append(out, games[i].Summary())
	}
	return out, nil
}
