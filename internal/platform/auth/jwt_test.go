package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, RoleHotelier, "Nimal", "nimal@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleHotelier, claims.Role)
	assert.Equal(t, "nimal@example.com", claims.Email)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTManager("one", time.Minute, time.Hour)
	verifier := NewJWTManager("two", time.Minute, time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), RoleTourist, "", "")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, time.Hour)
	token, err := m.GenerateAccessToken(uuid.New(), RoleTourist, "", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRole_IsProvider(t *testing.T) {
	assert.True(t, RoleHotelier.IsProvider())
	assert.True(t, RoleTourGuide.IsProvider())
	assert.True(t, RoleTransportProvider.IsProvider())
	assert.False(t, RoleTourist.IsProvider())
	assert.False(t, RoleAdmin.IsProvider())
}
