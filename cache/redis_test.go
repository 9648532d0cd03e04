package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCache(t *testing.T) {
	require.NoError(t, CloseRedis())
	ctx := context.Background()

	assert.False(t, IsRedisAvailable())
	assert.NoError(t, Ping(ctx))
	assert.ErrorIs(t, SetGame(ctx, "abc", map[string]string{"title": "x"}), ErrUnavailable)

	var dest map[string]string
	assert.ErrorIs(t, GetGame(ctx, "abc", &dest), ErrUnavailable)
	assert.Nil(t, dest)

	assert.NoError(t, InvalidateGame(ctx, "abc"))
	assert.NoError(t, Delete(ctx))
}

func TestInitRedis_BadURL(t *testing.T) {
	err := InitRedis("redis://%zz", "")
	assert.Error(t, err)
	assert.False(t, IsRedisAvailable())
}

func TestGamesListKey(t *testing.T) {
	a := GamesListKey("category=RPG&page=1")
	b := GamesListKey("category=RPG&page=2")

	assert.True(t, strings.HasPrefix(a, GamesListPrefix))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, GamesListKey("category=RPG&page=1"))
	assert.Equal(t, "game:42", GameKey("42"))
}
