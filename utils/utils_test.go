package utils

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	raw, err := m.Sign("acc-1", "customer")
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.UserID)
	assert.Equal(t, "customer", claims.UserType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	raw, err := NewTokenManager("one", time.Hour).Sign("acc-1", "developer")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokenManager("one", -time.Minute).Sign("acc-1", "developer")
	require.NoError(t, err)
	_, err = NewTokenManager("one", time.Hour).Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("one", time.Hour).Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestGenerateResetToken(t *testing.T) {
	for i := 0; i < 50; i++ {
		tok, err := GenerateResetToken()
		require.NoError(t, err)
		require.Len(t, tok, 6)
		n, err := strconv.Atoi(tok)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

type sampleInput struct {
	Email   string `json:"email" validate:"required,email"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	ExpDate string `json:"cardExpDate" validate:"required,cardexp"`
	Nested  struct {
		CPU string `json:"cpu" validate:"required"`
	} `json:"minimumRequirements"`
}

func TestValidationErrorsUseJSONNames(t *testing.T) {
	in := sampleInput{Email: "nope", Rating: 9, ExpDate: "13/24"}

	fields := ValidationErrors(ValidateStruct(in))
	assert.Equal(t, "email must be a valid email", fields["email"])
	assert.Equal(t, "rating must be less than or equal to 5", fields["rating"])
	assert.Equal(t, "cardExpDate must use the MM/YY format", fields["cardExpDate"])
	assert.Equal(t, "cpu is required", fields["minimumRequirements.cpu"])
}

func TestValidationPasses(t *testing.T) {
	in := sampleInput{Email: "a@b.co", Rating: 5, ExpDate: "09/27"}
	in.Nested.CPU = "i5"
	assert.NoError(t, ValidateStruct(in))
	assert.Nil(t, ValidationErrors(nil))
}
