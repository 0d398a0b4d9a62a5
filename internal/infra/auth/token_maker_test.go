package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTMakerRoundTrip(t *testing.T) {
	maker, err := NewJWTMaker(testSecret)
	require.NoError(t, err)

	token, err := maker.CreateToken(7, "user@mail.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.UserID)
	require.Equal(t, "user@mail.com", claims.Email)
}

func TestJWTMakerExpiredToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecret)
	require.NoError(t, err)

	token, err := maker.CreateToken(7, "user@mail.com", -time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTMakerInvalidToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecret)
	require.NoError(t, err)

	_, err = maker.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// 換一把鑰匙簽的token必須失敗
	other, err := NewJWTMaker(strings.Repeat("x", 32))
	require.NoError(t, err)
	token, err := other.CreateToken(7, "user@mail.com", time.Hour)
	require.NoError(t, err)

	_, err = maker.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTMakerShortSecret(t *testing.T) {
	_, err := NewJWTMaker("short")
	require.ErrorIs(t, err, ErrShortSecret)
}

func TestBcryptHasher(t *testing.T) {
	hasher := BcryptHasher{}
	hash, err := hasher.Hash([]byte("s3cret-password"))
	require.NoError(t, err)

	require.NoError(t, hasher.Compare(hash, []byte("s3cret-password")))
	require.Error(t, hasher.Compare(hash, []byte("wrong-password")))
}
