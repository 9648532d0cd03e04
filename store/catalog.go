package store

import (
	"context"
	"strconv"
	"strings"

	"gameflix/models"

	"github.com/pkg/errors"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
	SearchLimit     = 8
)

// sortColumns maps the orderBy query values to SQL expressions. Games
// without reviews rank as rating 0.
var sortColumns = map[string]string{
	"price":     "games.price",
	"title":     "games.title",
	"category":  "games.category",
	"createdAt": "games.created_at",
	"views":     "games.views",
	"purchases": "games.purchases",
	"rating":    "COALESCE(ratings.average_rating, 0)",
}

// CatalogFilter is the parsed query string of GET /games. Empty fields do
// not filter.
type CatalogFilter struct {
	Category   string
	OS         string
	Language   string
	PlayersQty string
	Price      PriceRange
	MinRating  *float64
	OrderBy    string
	Desc       bool
	Page       int
	Limit      int
}

// PriceRange bounds are inclusive; nil means unbounded.
type PriceRange struct {
	Min *float64
	Max *float64
}

// ParsePriceRange understands "N+" (N and above) and "A-B" where either
// side may be empty. Bounds that do not parse are ignored.
func ParsePriceRange(raw string) PriceRange {
	raw = strings.TrimSpace(raw)
	var r PriceRange
	if raw == "" {
		return r
	}
	if strings.HasSuffix(raw, "+") {
		r.Min = parseBound(strings.TrimSuffix(raw, "+"))
		return r
	}
	lo, hi, found := strings.Cut(raw, "-")
	r.Min = parseBound(lo)
	if found {
		r.Max = parseBound(hi)
	}
	return r
}

func parseBound(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func (f *CatalogFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if _, ok := sortColumns[f.OrderBy]; !ok {
		f.OrderBy = "price"
	}
}

// ListPublishedGames returns one page of published games matching f, each
// with its average review rating. f is normalized in place so callers can
// echo the effective page and limit.
func (s *Store) ListPublishedGames(ctx context.Context, f *CatalogFilter) ([]models.GameListing, error) {
	f.normalize()

	ratings := s.conn(ctx).Model(&models.Review{}).
		Select("game_id, AVG(rating) AS average_rating").
		Group("game_id")

	q := s.conn(ctx).Model(&models.Game{}).
		Select("games.*, ratings.average_rating").
		Joins("LEFT JOIN (?) AS ratings ON ratings.game_id = games.id", ratings).
		Where("games.status = ?", models.StatusPublished)

	if f.Category != "" {
		q = q.Where("games.category = ?", f.Category)
	}
	if f.OS != "" {
		q = q.Where("games.os = ?", f.OS)
	}
	if f.Language != "" {
		q = q.Where("games.language = ?", f.Language)
	}
	if f.PlayersQty != "" {
		q = q.Where("games.players_qty = ?", f.PlayersQty)
	}
	if f.Price.Min != nil {
		q = q.Where("games.price >= ?", *f.Price.Min)
	}
	if f.Price.Max != nil {
		q = q.Where("games.price <= ?", *f.Price.Max)
	}
	if f.MinRating != nil {
		q = q.Where("ratings.average_rating >= ?", *f.MinRating)
	}

	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: sortColumns[f.OrderBy], Raw: true}, Desc: f.Desc}).
		Order("games.id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit)

	var games []models.GameListing
	if err := q.Scan(&games).Error; err != nil {
		return nil, errors.Wrap(err, "list published games")
	}
	return games, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchGames matches published games whose title or category contains
// term, ignoring case.
func (s *Store) SearchGames(ctx context.Context, term string, limit int) ([]models.GameSummary, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	var games []models.Game
	err := s.conn(ctx).
		Select("id", "title", "category", "price", "image_url").
		Where("status = ?", models.StatusPublished).
		Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!')", pattern, pattern).
		Order("title ASC").
		Limit(limit).
		Find(&games).Error
	if err != nil {
		return nil, errors.Wrap(err, "search games")
	}
	out := make([]models.GameSummary, 0, len(games))
	for i := range games {
		out = append(out, games[i].Summary())
	}
	return out, nil
}

// ListCategories returns the distinct categories of published games with
// how many games each holds.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.conn(ctx).Model(&models.Game{}).
		Select("category AS name, COUNT(*) AS games").
		Where("status = ?", models.StatusPublished).
		Group("category").
		Order("category ASC").
		Scan(&cats).Error
	return cats, errors.Wrap(err, "list categories")
}
