package store

import (
	"context"
	"database/sql"

	"gameflix/models"

	"github.com/pkg/errors"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return errors.Wrap(s.conn(ctx).Create(r).Error, "create review")
}

// ListReviews returns the reviews of a game, newest first.
func (s *Store) ListReviews(ctx context.Context, gameID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.conn(ctx).Where("game_id = ?", gameID).Order("created_at DESC").Find(&reviews).Error
	return reviews, errors.Wrap(err, "list reviews")
}

// RatingSummary aggregates the reviews of one or more games. Average is nil
// when there are no reviews.
type RatingSummary struct {
	Average *float64
	Count   int64
}

type ratingRow struct {
	Average sql.NullFloat64
	Reviews int64
}

func (s *Store) RatingFor(ctx context.Context, gameIDs ...string) (RatingSummary, error) {
	var out RatingSummary
	if len(gameIDs) == 0 {
		return out, nil
	}
	var row ratingRow
	err := s.conn(ctx).Model(&models.Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS reviews").
		Where("game_id IN ?", gameIDs).
		Scan(&row).Error
	if err != nil {
		return out, errors.Wrap(err, "rating summary")
	}
	out.Count = row.Reviews
	if row.Average.Valid {
		avg := row.Average.Float64
		out.Average = &avg
	}
	return out, nil
}
