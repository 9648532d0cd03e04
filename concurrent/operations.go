package concurrent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gameflix/models"
	"gameflix/store"
)

/*
1. FetchGameWithDetails - game, developer profile and reviews are read in
   parallel; the three queries are independent.

2. CalculateDeveloperSummary - totals across a developer's games. The game
   list and the review aggregate run side by side once the ids are known.
*/

const fetchTimeout = 5 * time.Second

// ==================== 1. GAME DETAILS WITH CONCURRENCY ====================

// DeveloperInfo is the public part of a developer shown next to a game.
type DeveloperInfo struct {
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	LogoImageURL       string `json:"logoImageUrl"`
}

type GameDetails struct {
	models.Game
	Developer     *DeveloperInfo  `json:"developer"`
	Reviews       []models.Review `json:"reviews"`
	AverageRating *float64        `json:"averageRating"`
}

// FetchGameWithDetails loads a game and its related data concurrently. A
// missing game yields store.ErrGameNotFound; a missing developer leaves
// Developer nil.
func FetchGameWithDetails(ctx context.Context, st *store.Store, gameID string) (*GameDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	type gameResult struct {
		game *models.Game
		err  error
	}
	type developerResult struct {
		dev *DeveloperInfo
		err error
	}
	type reviewsResult struct {
		reviews []models.Review
		err     error
	}

	gameChan := make(chan gameResult, 1)
	devChan := make(chan developerResult, 1)
	reviewsChan := make(chan reviewsResult, 1)

	var wg sync.WaitGroup
	wg.Add(2)

	// Goroutine 1: the game, then its developer
	go func() {
		defer wg.Done()
		game, err := st.FindGame(ctx, gameID)
		gameChan <- gameResult{game: game, err: err}
		if err != nil {
			devChan <- developerResult{}
			return
		}
		acc, err := st.FindAccountByID(ctx, game.DeveloperID)
		if errors.Is(err, store.ErrAccountNotFound) {
			devChan <- developerResult{}
			return
		}
		if err != nil {
			devChan <- developerResult{err: err}
			return
		}
		if acc.Developer == nil {
			devChan <- developerResult{}
			return
		}
		devChan <- developerResult{dev: &DeveloperInfo{
			CompanyName:        acc.Developer.CompanyName,
			CompanyDescription: acc.Developer.CompanyDescription,
			LogoImageURL:       acc.Developer.LogoImageURL,
		}}
	}()

	// Goroutine 2: reviews
	go func() {
		defer wg.Done()
		reviews, err := st.ListReviews(ctx, gameID)
		reviewsChan <- reviewsResult{reviews: reviews, err: err}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout fetching game details: %w", ctx.Err())
	}

	g := <-gameChan
	if g.err != nil {
		return nil, g.err
	}
	d := <-devChan
	if d.err != nil {
		return nil, d.err
	}
	r := <-reviewsChan
	if r.err != nil {
		return nil, r.err
	}

	details := &GameDetails{
		Game:      *g.game,
		Developer: d.dev,
		Reviews:   r.reviews,
	}
	if details.Reviews == nil {
		details.Reviews = []models.Review{}
	}
	if len(r.reviews) > 0 {
		var sum int
		for _, rv := range r.reviews {
			sum += rv.Rating
		}
		avg := float64(sum) / float64(len(r.reviews))
		details.AverageRating = &avg
	}
	return details, nil
}

// ==================== 2. DEVELOPER SUMMARY ====================

type DeveloperSummary struct {
	Games          int      `json:"games"`
	Published      int      `json:"published"`
	Views          int64    `json:"views"`
	Purchases      int64    `json:"purchases"`
	Wishlisted     int64    `json:"wishlisted"`
	ConversionRate float64  `json:"conversionRate"`
	AverageRating  *float64 `json:"averageRating"`
	Reviews        int64    `json:"reviews"`
}

// CalculateDeveloperSummary returns store.ErrGameNotFound when the developer
// has no games.
func CalculateDeveloperSummary(ctx context.Context, st *store.Store, developerID string) (*DeveloperSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	games, err := st.ListDeveloperGames(ctx, developerID)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, store.ErrGameNotFound
	}

	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}

	summary := &DeveloperSummary{Games: len(games)}
	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		rating, err := st.RatingFor(ctx, ids...)
		if err != nil {
			errChan <- fmt.Errorf("rating summary: %w", err)
			return
		}
		summary.AverageRating = rating.Average
		summary.Reviews = rating.Count
	}()

	// counters are summed while the rating query runs
	var views, purchases, wishlisted int64
	var published int
	for _, g := range games {
		views += g.Views
		purchases += g.Purchases
		wishlisted += g.WishlistCount
		if g.Status == models.StatusPublished {
			published++
		}
	}

	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}

	summary.Published = published
	summary.Views = views
	summary.Purchases = purchases
	summary.Wishlisted = wishlisted
	summary.ConversionRate = models.ConversionRate(purchases, views)
	return summary, nil
}
