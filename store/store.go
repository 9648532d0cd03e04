// Package store holds every database operation of the API. Handlers never
// build queries themselves; they call into a Store bound to the request
// context.
package store

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrGameNotFound      = errors.New("game not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrAlreadyInWishlist = errors.New("game already in wishlist")
	ErrNotInWishlist     = errors.New("game not in wishlist")
	ErrInvalidResetToken = errors.New("reset token invalid or expired")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notFound maps gorm's missing-row error to sentinel and wraps anything
// else with msg.
func notFound(err error, sentinel error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

// conversionRateExpr recomputes conversion_rate inside the same UPDATE that
// shifts views and purchases by the given deltas. Column references on the
// right-hand side see the pre-update row.
func conversionRateExpr(viewsDelta, purchasesDelta int) clause.Expr {
	views := fmt.Sprintf("(views + %d)", viewsDelta)
	purchases := fmt.Sprintf("(purchases + %d)", purchasesDelta)
	return gorm.Expr(fmt.Sprintf("CASE WHEN %s > 0 THEN %s * 100.0 / %s ELSE 0 END", views, purchases, views))
}
