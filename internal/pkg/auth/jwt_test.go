package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

func newService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", TokenIssuer: "campusnet"})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newService()
	token, err := s.GenerateToken("f-1", "faculty", []string{"dept_admin"}, time.Hour)
	require.NoError(t, err)

	claims, err := s.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "f-1", claims.Subject)
	assert.Equal(t, "faculty", claims.Role)
	assert.Equal(t, []string{"dept_admin"}, claims.Roles)
}

func TestValidateExpired(t *testing.T) {
	s := newService()
	token, err := s.GenerateToken("s-1", "student", nil, -time.Minute)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
}

func TestValidateRejectsOtherSecretAndIssuer(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", TokenIssuer: "campusnet"})
	token, err := other.GenerateToken("s-1", "student", nil, time.Hour)
	require.NoError(t, err)
	_, err = newService().ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))

	foreign := NewJWTService(JWTConfig{SecretKey: "test-secret", TokenIssuer: "elsewhere"})
	token, err = foreign.GenerateToken("s-1", "student", nil, time.Hour)
	require.NoError(t, err)
	_, err = newService().ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
}

func TestValidateRejectsOtherAlgorithm(t *testing.T) {
	claims := &Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "a-1", Issuer: "campusnet"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newService().ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
}

func TestValidateAndExtractClaimsRequiresRole(t *testing.T) {
	s := newService()
	token, err := s.GenerateToken("s-1", "", nil, time.Hour)
	require.NoError(t, err)

	_, err = s.ValidateAndExtractClaims(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))

	_, err = s.ValidateAndExtractClaims("")
	assert.True(t, errors.Is(err, apperrors.ErrTokenNotFound))
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", token)

	token, err = ExtractBearerToken("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", token)

	_, err = ExtractBearerToken("")
	assert.True(t, errors.Is(err, apperrors.ErrTokenNotFound))

	_, err = ExtractBearerToken("Basic dXNlcg==")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidFormat))
}
