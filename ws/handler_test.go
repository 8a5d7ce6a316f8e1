package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crewplan/config"
	"crewplan/models"
	"crewplan/utils"
)

func TestResolveToken(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	user := &models.User{Role: models.RoleEmployee}
	require.NoError(t, user.BeforeCreate(nil))
	token, err := utils.GenerateToken(user)
	require.NoError(t, err)

	t.Run("bare token", func(t *testing.T) {
		claims, err := resolveToken(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.UserID)
	})

	t.Run("bearer prefix is stripped", func(t *testing.T) {
		claims, err := resolveToken("Bearer " + token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.UserID)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := resolveToken("not-a-token")
		require.Error(t, err)
		_, err = resolveToken("")
		require.Error(t, err)
	})
}
