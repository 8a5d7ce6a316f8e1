package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestAppErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{Unauthenticated("no token"), fiber.StatusUnauthorized},
		{Forbidden("not yours"), fiber.StatusForbidden},
		{NotFound("gone"), fiber.StatusNotFound},
		{Conflict("already there"), fiber.StatusConflict},
		{Invalid("bad input"), fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindConflict, KindOf(Conflict("dup")))
	require.Equal(t, KindNotFound, KindOf(fmt.Errorf("loading: %w", NotFound("gone"))))
	require.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
