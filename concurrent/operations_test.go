package concurrent

import (
	"context"
	"testing"
	"time"

	"gameflix/db"
	"gameflix/models"
	"gameflix/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st        *store.Store
	developer *models.Account
	customer  *models.Account
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gdb, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	st := store.New(gdb)
	ctx := context.Background()

	dev := &models.Account{
		UserType:  models.KindDeveloper,
		Developer: &models.DeveloperProfile{CompanyName: "Acme", CompanyDescription: "Indie studio", LogoImageURL: "http://logo"},
	}
	dev.Email = "dev@acme.com"
	dev.PasswordHash = "x"
	require.NoError(t, st.CreateAccount(ctx, dev))

	cust := &models.Account{
		UserType: models.KindCustomer,
		Customer: &models.CustomerProfile{FirstName: "Ana", LastName: "Diaz", BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	cust.Email = "ana@x.com"
	cust.PasswordHash = "x"
	require.NoError(t, st.CreateAccount(ctx, cust))

	return fixture{st: st, developer: dev, customer: cust}
}

func (f fixture) game(t *testing.T, status models.GameStatus) *models.Game {
	t.Helper()
	req := models.Requirements{CPU: "i5", Memory: "8GB", GPU: "GTX"}
	g := &models.Game{
		Title: "Quest", Description: "d", Category: "RPG", Price: 25,
		OS: "Linux", Language: "Español", PlayersQty: "Multi-player",
		MinimumRequirements: req, RecommendedRequirements: req,
		Status: status, DeveloperID: f.developer.ID, ImageURL: "http://img",
	}
	require.NoError(t, f.st.CreateGame(context.Background(), g))
	return g
}

func TestFetchGameWithDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.game(t, models.StatusPublished)

	details, err := FetchGameWithDetails(ctx, f.st, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quest", details.Title)
	require.NotNil(t, details.Developer)
	assert.Equal(t, "Acme", details.Developer.CompanyName)
	assert.Empty(t, details.Reviews)
	assert.Nil(t, details.AverageRating)

	for _, rating := range []int{5, 2} {
		require.NoError(t, f.st.CreateReview(ctx, &models.Review{
			FirstName: "Ana", LastName: "Diaz", Content: "fun", Rating: rating,
			GameID: g.ID, CustomerID: f.customer.ID,
		}))
	}
	details, err = FetchGameWithDetails(ctx, f.st, g.ID)
	require.NoError(t, err)
	assert.Len(t, details.Reviews, 2)
	require.NotNil(t, details.AverageRating)
	assert.InDelta(t, 3.5, *details.AverageRating, 1e-9)
}

func TestFetchGameWithDetails_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := FetchGameWithDetails(context.Background(), f.st, "missing")
	assert.ErrorIs(t, err, store.ErrGameNotFound)
}

func TestCalculateDeveloperSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := CalculateDeveloperSummary(ctx, f.st, f.developer.ID)
	assert.ErrorIs(t, err, store.ErrGameNotFound)

	a := f.game(t, models.StatusPublished)
	f.game(t, models.StatusUnpublished)
	for i := 0; i < 4; i++ {
		require.NoError(t, f.st.IncrementViews(ctx, a.ID))
	}
	require.NoError(t, f.st.Purchase(ctx, &models.Payment{
		CardNumber: "4111111111111111", CardProvider: "Visa", CardExpDate: "10/28", CardCVC: "123",
		GameID: a.ID, CustomerID: f.customer.ID,
	}))
	require.NoError(t, f.st.AddToWishlist(ctx, f.customer.ID, a.ID))
	require.NoError(t, f.st.CreateReview(ctx, &models.Review{
		FirstName: "Ana", LastName: "Diaz", Content: "ok", Rating: 4, GameID: a.ID, CustomerID: f.customer.ID,
	}))

	summary, err := CalculateDeveloperSummary(ctx, f.st, f.developer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Games)
	assert.Equal(t, 1, summary.Published)
	assert.EqualValues(t, 4, summary.Views)
	assert.EqualValues(t, 1, summary.Purchases)
	assert.EqualValues(t, 1, summary.Wishlisted)
	assert.InDelta(t, 25.0, summary.ConversionRate, 1e-9)
	assert.EqualValues(t, 1, summary.Reviews)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 4.0, *summary.AverageRating, 1e-9)
}
