package store

import (
	"context"

	"gameflix/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Purchase records the payment and bumps the game's purchase counter in one
// transaction.
func (s *Store) Purchase(ctx context.Context, p *models.Payment) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Game{}).Where("id = ?", p.GameID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check game")
		}
		if count == 0 {
			return ErrGameNotFound
		}
		if err := tx.Create(p).Error; err != nil {
			return errors.Wrap(err, "create payment")
		}
		return errors.Wrap(incrementPurchases(tx, p.GameID), "increment purchases")
	})
}

// ListPurchases returns a customer's payments, oldest first, each joined
// with the purchased game when it still exists.
func (s *Store) ListPurchases(ctx context.Context, customerID string) ([]models.Purchase, error) {
	var payments []models.Payment
	err := s.conn(ctx).Where("customer_id = ?", customerID).Order("created_at ASC").Find(&payments).Error
	if err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	if len(payments) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.GameID)
	}
	var games []models.Game
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&games).Error; err != nil {
		return nil, errors.Wrap(err, "load purchased games")
	}
	byID := make(map[string]models.GameSummary, len(games))
	for i := range games {
		byID[games[i].ID] = games[i].Summary()
	}

	out := make([]models.Purchase, 0, len(payments))
	for _, p := range payments {
		purchase := models.Purchase{Payment: p}
		if g, ok := byID[p.GameID]; ok {
			purchase.Game = &g
		}
		out = append(out, purchase)
	}
	return out, nil
}
