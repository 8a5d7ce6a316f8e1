package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crewplan/config"
	"crewplan/models"
)

func TestTokenRoundtrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	user := &models.User{Role: models.RoleManager}
	require.NoError(t, user.BeforeCreate(nil))

	token, err := GenerateToken(user)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, models.RoleManager, claims.Role)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	user := &models.User{Role: models.RoleEmployee}
	require.NoError(t, user.BeforeCreate(nil))

	token, err := GenerateToken(user)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "rotated"
	_, err = ParseToken(token)
	require.Error(t, err)
}
