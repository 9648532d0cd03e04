package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gameflix/db"
	"gameflix/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(gdb)
}

func createDeveloper(t *testing.T, s *Store, email string) *models.Account {
	t.Helper()
	acc := &models.Account{
		UserType:  models.KindDeveloper,
		Developer: &models.DeveloperProfile{CompanyName: "Acme", CompanyDescription: "Games", LogoImageURL: "http://logo"},
	}
	acc.Email = email
	acc.PasswordHash = "hash"
	require.NoError(t, s.CreateAccount(context.Background(), acc))
	return acc
}

func createCustomer(t *testing.T, s *Store, email string) *models.Account {
	t.Helper()
	acc := &models.Account{
		UserType: models.KindCustomer,
		Customer: &models.CustomerProfile{FirstName: "Ana", LastName: "Diaz", BirthDate: time.Date(1995, 4, 2, 0, 0, 0, 0, time.UTC)},
	}
	acc.Email = email
	acc.PasswordHash = "hash"
	require.NoError(t, s.CreateAccount(context.Background(), acc))
	return acc
}

type gameOpt func(*models.Game)

func withStatus(st models.GameStatus) gameOpt { return func(g *models.Game) { g.Status = st } }
func withPrice(p float64) gameOpt            { return func(g *models.Game) { g.Price = p } }
func withCategory(c string) gameOpt          { return func(g *models.Game) { g.Category = c } }
func withTitle(title string) gameOpt         { return func(g *models.Game) { g.Title = title } }

func createGame(t *testing.T, s *Store, developerID string, opts ...gameOpt) *models.Game {
	t.Helper()
	req := models.Requirements{CPU: "i5", Memory: "8GB", GPU: "GTX 1060"}
	g := &models.Game{
		Title:                   "Untitled",
		Description:             "A game",
		Category:                "RPG",
		Price:                   25,
		OS:                      "Windows",
		Language:                "Inglés",
		PlayersQty:              "Single-player",
		MinimumRequirements:     req,
		RecommendedRequirements: req,
		Status:                  models.StatusPublished,
		DeveloperID:             developerID,
		ImageURL:                "http://img",
	}
	for _, opt := range opts {
		opt(g)
	}
	require.NoError(t, s.CreateGame(context.Background(), g))
	return g
}

func TestCreateAccount_EmailTakenAcrossKinds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createCustomer(t, s, "a@x.com")

	dev := &models.Account{UserType: models.KindDeveloper, Developer: &models.DeveloperProfile{CompanyName: "Acme"}}
	dev.Email = "a@x.com"
	dev.PasswordHash = "hash"
	assert.ErrorIs(t, s.CreateAccount(ctx, dev), ErrEmailTaken)

	taken, err := s.EmailExists(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestFindAccount_LoadsProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "cust@x.com")

	got, err := s.FindAccountByEmail(ctx, "dev@x.com")
	require.NoError(t, err)
	assert.True(t, got.IsDeveloper())
	assert.Equal(t, dev.ID, got.ID)
	assert.Equal(t, "Acme", got.Developer.CompanyName)

	got, err = s.FindCustomer(ctx, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Customer.FirstName)

	_, err = s.FindCustomer(ctx, dev.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = s.FindAccountByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResetPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	acc := createCustomer(t, s, "c@x.com")
	now := time.Now().UTC()

	require.NoError(t, s.SetResetToken(ctx, acc.ID, "123456", now.Add(time.Hour)))
	assert.ErrorIs(t, s.ResetPassword(ctx, "654321", "new", now), ErrInvalidResetToken)
	assert.ErrorIs(t, s.ResetPassword(ctx, "123456", "new", now.Add(2*time.Hour)), ErrInvalidResetToken)

	require.NoError(t, s.ResetPassword(ctx, "123456", "new", now))
	got, err := s.FindAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)
	assert.Nil(t, got.ResetPasswordToken)
	assert.Nil(t, got.ResetPasswordExpires)

	// single use
	assert.ErrorIs(t, s.ResetPassword(ctx, "123456", "again", now), ErrInvalidResetToken)
}

func TestCreateGame_Defaults(t *testing.T) {
	s := newTestStore(t)
	dev := createDeveloper(t, s, "dev@x.com")
	g := createGame(t, s, dev.ID, withStatus(""))

	got, err := s.FindGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnpublished, got.Status)
	assert.Zero(t, got.Views)
	assert.Zero(t, got.ConversionRate)
	assert.Equal(t, "i5", got.MinimumRequirements.CPU)
}

func TestUpdateGame_OnlyProvidedFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	g := createGame(t, s, dev.ID)
	require.NoError(t, s.IncrementViews(ctx, g.ID))

	title := "Renamed"
	updated, err := s.UpdateGame(ctx, g.ID, models.UpdateGameInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 25.0, updated.Price)

	got, err := s.FindGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "RPG", got.Category)
	assert.EqualValues(t, 1, got.Views)

	_, err = s.UpdateGame(ctx, "missing", models.UpdateGameInput{Title: &title})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestSetStatusAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	g := createGame(t, s, dev.ID, withStatus(models.StatusUnpublished))

	require.NoError(t, s.SetGameStatus(ctx, g.ID, models.StatusPublished))
	got, err := s.FindGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, got.Status)

	require.NoError(t, s.DeleteGame(ctx, g.ID))
	_, err = s.FindGame(ctx, g.ID)
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, s.DeleteGame(ctx, g.ID), ErrGameNotFound)
	assert.ErrorIs(t, s.SetGameStatus(ctx, g.ID, models.StatusPublished), ErrGameNotFound)
}

func TestIncrementViews_ConcurrentKeepsRateConsistent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "c@x.com")
	g := createGame(t, s, dev.ID)

	require.NoError(t, s.Purchase(ctx, &models.Payment{
		CardNumber: "4111111111111111", CardProvider: "Visa", CardExpDate: "12/30", CardCVC: "123",
		GameID: g.ID, CustomerID: cust.ID,
	}))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.IncrementViews(ctx, g.ID))
		}()
	}
	wg.Wait()

	got, err := s.FindGame(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.Views)
	assert.EqualValues(t, 1, got.Purchases)
	assert.InDelta(t, 5.0, got.ConversionRate, 1e-9)

	assert.ErrorIs(t, s.IncrementViews(ctx, "missing"), ErrGameNotFound)
}

func TestPurchase_WithoutViewsHasZeroRate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "c@x.com")
	g := createGame(t, s, dev.ID)

	p := &models.Payment{CardNumber: "4111111111111111", CardProvider: "Visa", CardExpDate: "12/30", CardCVC: "123", GameID: g.ID, CustomerID: cust.ID}
	require.NoError(t, s.Purchase(ctx, p))

	got, err := s.FindGame(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Purchases)
	assert.Zero(t, got.ConversionRate)

	missing := &models.Payment{CardNumber: "4111111111111111", CardProvider: "Visa", CardExpDate: "12/30", CardCVC: "123", GameID: "missing", CustomerID: cust.ID}
	assert.ErrorIs(t, s.Purchase(ctx, missing), ErrGameNotFound)

	purchases, err := s.ListPurchases(ctx, cust.ID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	require.NotNil(t, purchases[0].Game)
	assert.Equal(t, g.ID, purchases[0].Game.ID)
}

func TestListPurchases_DeletedGameKeepsPayment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "c@x.com")
	g := createGame(t, s, dev.ID)
	require.NoError(t, s.Purchase(ctx, &models.Payment{CardNumber: "4111111111111111", CardProvider: "AMEX", CardExpDate: "01/29", CardCVC: "1234", GameID: g.ID, CustomerID: cust.ID}))
	require.NoError(t, s.DeleteGame(ctx, g.ID))

	purchases, err := s.ListPurchases(ctx, cust.ID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Nil(t, purchases[0].Game)
}

func TestWishlist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "c@x.com")
	first := createGame(t, s, dev.ID, withTitle("First"))
	second := createGame(t, s, dev.ID, withTitle("Second"))

	require.NoError(t, s.AddToWishlist(ctx, cust.ID, second.ID))
	require.NoError(t, s.AddToWishlist(ctx, cust.ID, first.ID))
	assert.ErrorIs(t, s.AddToWishlist(ctx, cust.ID, first.ID), ErrAlreadyInWishlist)
	assert.ErrorIs(t, s.AddToWishlist(ctx, cust.ID, "missing"), ErrGameNotFound)

	ids, err := s.WishlistGameIDs(ctx, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, ids)

	games, err := s.WishlistGames(ctx, cust.ID)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Second", games[0].Title)
	assert.Equal(t, "First", games[1].Title)

	got, err := s.FindGame(ctx, first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.WishlistCount)

	require.NoError(t, s.RemoveFromWishlist(ctx, cust.ID, first.ID))
	assert.ErrorIs(t, s.RemoveFromWishlist(ctx, cust.ID, first.ID), ErrNotInWishlist)
	got, err = s.FindGame(ctx, first.ID)
	require.NoError(t, err)
	assert.Zero(t, got.WishlistCount)
}

func TestRemoveFromWishlist_CountFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "c@x.com")
	g := createGame(t, s, dev.ID)

	// entry inserted without going through AddToWishlist: the counter is 0
	require.NoError(t, s.db.Create(&models.WishlistEntry{CustomerID: cust.ID, GameID: g.ID}).Error)
	require.NoError(t, s.RemoveFromWishlist(ctx, cust.ID, g.ID))

	got, err := s.FindGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Zero(t, got.WishlistCount)
}

func TestParsePriceRange(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		in   string
		want PriceRange
	}{
		{"", PriceRange{}},
		{"40+", PriceRange{Min: f(40)}},
		{"20-40", PriceRange{Min: f(20), Max: f(40)}},
		{"-10", PriceRange{Max: f(10)}},
		{"5-", PriceRange{Min: f(5)}},
		{"abc-15", PriceRange{Max: f(15)}},
		{"cheap", PriceRange{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePriceRange(tt.in))
		})
	}
}

func TestListPublishedGames_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "c@x.com")

	cheap := createGame(t, s, dev.ID, withTitle("Cheap"), withPrice(10))
	mid := createGame(t, s, dev.ID, withTitle("Mid"), withPrice(30), withCategory("Action"))
	pricey := createGame(t, s, dev.ID, withTitle("Pricey"), withPrice(40))
	createGame(t, s, dev.ID, withTitle("Hidden"), withPrice(30), withStatus(models.StatusUnpublished))

	for _, r := range []struct {
		game   string
		rating int
	}{{mid.ID, 5}, {mid.ID, 4}, {cheap.ID, 2}} {
		require.NoError(t, s.CreateReview(ctx, &models.Review{FirstName: "Ana", LastName: "Diaz", Content: "ok", Rating: r.rating, GameID: r.game, CustomerID: cust.ID}))
	}

	list := func(f CatalogFilter) []string {
		games, err := s.ListPublishedGames(ctx, &f)
		require.NoError(t, err)
		titles := make([]string, 0, len(games))
		for _, g := range games {
			titles = append(titles, g.Title)
		}
		return titles
	}

	assert.Equal(t, []string{"Cheap", "Mid", "Pricey"}, list(CatalogFilter{}))
	assert.Equal(t, []string{"Pricey"}, list(CatalogFilter{Price: ParsePriceRange("40+")}))
	assert.Equal(t, []string{"Mid", "Pricey"}, list(CatalogFilter{Price: ParsePriceRange("20-40")}))
	assert.Equal(t, []string{"Mid"}, list(CatalogFilter{Category: "Action"}))
	assert.Empty(t, list(CatalogFilter{Category: "Puzzle"}))

	minRating := 4.0
	assert.Equal(t, []string{"Mid"}, list(CatalogFilter{MinRating: &minRating}))
	assert.Equal(t, []string{"Mid", "Cheap", "Pricey"}, list(CatalogFilter{OrderBy: "rating", Desc: true}))
	assert.Equal(t, []string{"Pricey", "Mid", "Cheap"}, list(CatalogFilter{OrderBy: "bogus", Desc: true}))

	games, err := s.ListPublishedGames(ctx, &CatalogFilter{Category: "Action"})
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.NotNil(t, games[0].AverageRating)
	assert.InDelta(t, 4.5, *games[0].AverageRating, 1e-9)
	assert.Equal(t, mid.ID, games[0].ID)

	games, err = s.ListPublishedGames(ctx, &CatalogFilter{})
	require.NoError(t, err)
	for _, g := range games {
		if g.ID == pricey.ID {
			assert.Nil(t, g.AverageRating)
		}
	}
}

func TestListPublishedGames_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	for i := 1; i <= 5; i++ {
		createGame(t, s, dev.ID, withTitle(fmt.Sprintf("Game %d", i)), withPrice(float64(i)))
	}

	f := CatalogFilter{Page: 2, Limit: 2}
	games, err := s.ListPublishedGames(ctx, &f)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Game 3", games[0].Title)
	assert.Equal(t, "Game 4", games[1].Title)

	f = CatalogFilter{Page: 0, Limit: 1000}
	_, err = s.ListPublishedGames(ctx, &f)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.Limit)
	assert.Equal(t, "price", f.OrderBy)
}

func TestSearchGames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	createGame(t, s, dev.ID, withTitle("Dragon Quest"), withCategory("RPG"))
	createGame(t, s, dev.ID, withTitle("Speed Racer"), withCategory("Racing"))
	createGame(t, s, dev.ID, withTitle("Dragon Secret"), withStatus(models.StatusUnpublished))
	createGame(t, s, dev.ID, withTitle("100% Fun"), withCategory("Party"))

	games, err := s.SearchGames(ctx, "dragon", SearchLimit)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Dragon Quest", games[0].Title)

	games, err = s.SearchGames(ctx, "RAC", SearchLimit)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Speed Racer", games[0].Title)

	games, err = s.SearchGames(ctx, "%", SearchLimit)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "100% Fun", games[0].Title)

	for i := 0; i < 10; i++ {
		createGame(t, s, dev.ID, withTitle(fmt.Sprintf("Clone %d", i)))
	}
	games, err = s.SearchGames(ctx, "clone", SearchLimit)
	require.NoError(t, err)
	assert.Len(t, games, SearchLimit)
}

func TestRatingFor_AndCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dev := createDeveloper(t, s, "dev@x.com")
	cust := createCustomer(t, s, "c@x.com")
	a := createGame(t, s, dev.ID, withCategory("RPG"))
	b := createGame(t, s, dev.ID, withCategory("Action"))
	createGame(t, s, dev.ID, withCategory("RPG"))
	createGame(t, s, dev.ID, withCategory("Horror"), withStatus(models.StatusUnpublished))

	summary, err := s.RatingFor(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Average)
	assert.Zero(t, summary.Count)

	require.NoError(t, s.CreateReview(ctx, &models.Review{FirstName: "A", LastName: "B", Content: "x", Rating: 3, GameID: a.ID, CustomerID: cust.ID}))
	require.NoError(t, s.CreateReview(ctx, &models.Review{FirstName: "A", LastName: "B", Content: "y", Rating: 4, GameID: b.ID, CustomerID: cust.ID}))
	summary, err = s.RatingFor(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Average)
	assert.InDelta(t, 3.5, *summary.Average, 1e-9)
	assert.EqualValues(t, 2, summary.Count)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{Name: "Action", Games: 1}, {Name: "RPG", Games: 2}}, cats)
}
