package store

import (
	"context"
	"time"

	"gameflix/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// editableColumns are the columns a developer may change through an update.
// Counters are left out so an edit never overwrites concurrent increments.
var editableColumns = []string{
	"title", "description", "category", "price", "os", "language", "players_qty",
	"min_cpu", "min_memory", "min_gpu", "rec_cpu", "rec_memory", "rec_gpu",
	"status", "image_url", "updated_at",
}

func (s *Store) CreateGame(ctx context.Context, g *models.Game) error {
	return errors.Wrap(s.conn(ctx).Create(g).Error, "create game")
}

func (s *Store) FindGame(ctx context.Context, id string) (*models.Game, error) {
	var g models.Game
	if err := s.conn(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, notFound(err, ErrGameNotFound, "find game")
	}
	return &g, nil
}

// UpdateGame applies in to the stored game and returns the result.
func (s *Store) UpdateGame(ctx context.Context, id string, in models.UpdateGameInput) (*models.Game, error) {
	var g models.Game
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&g).Error; err != nil {
			return notFound(err, ErrGameNotFound, "find game")
		}
		in.Apply(&g)
		return errors.Wrap(tx.Model(&g).Select(editableColumns).Updates(&g).Error, "update game")
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// SetGameStatus changes only the status column.
func (s *Store) SetGameStatus(ctx context.Context, id string, status models.GameStatus) error {
	res := s.conn(ctx).Model(&models.Game{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "set game status")
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

// DeleteGame removes the game. Reviews, payments and wishlist entries that
// point at it are kept; readers skip them.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Game{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete game")
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

// IncrementViews adds one view and recomputes conversion_rate atomically.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res := s.conn(ctx).Model(&models.Game{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"views":           gorm.Expr("views + 1"),
		"conversion_rate": conversionRateExpr(1, 0),
		"updated_at":      time.Now().UTC(),
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "increment views")
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

func incrementPurchases(tx *gorm.DB, id string) error {
	return tx.Model(&models.Game{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"purchases":       gorm.Expr("purchases + 1"),
		"conversion_rate": conversionRateExpr(0, 1),
		"updated_at":      time.Now().UTC(),
	}).Error
}

// shiftWishlistCount moves wishlist_count by +1 or -1, never below zero.
func shiftWishlistCount(tx *gorm.DB, id string, up bool) error {
	expr := gorm.Expr("CASE WHEN wishlist_count > 0 THEN wishlist_count - 1 ELSE 0 END")
	if up {
		expr = gorm.Expr("wishlist_count + 1")
	}
	return tx.Model(&models.Game{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"wishlist_count":  expr,
		"conversion_rate": conversionRateExpr(0, 0),
		"updated_at":      time.Now().UTC(),
	}).Error
}

// ListDeveloperGames returns every game of a developer, oldest first.
func (s *Store) ListDeveloperGames(ctx context.Context, developerID string) ([]models.Game, error) {
	var games []models.Game
	err := s.conn(ctx).Where("developer_id = ?", developerID).Order("created_at ASC").Find(&games).Error
	return games, errors.Wrap(err, "list developer games")
}
