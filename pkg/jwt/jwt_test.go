package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing-api/pkg/jwt"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := jwt.Generate("secret", "user-1", "project_manager", "agency-billing", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "project_manager", role)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := jwt.Generate("secret", "user-1", "admin", "agency-billing", 5)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro", token)
	assert.Error(t, err, "firma con otro secret debe fallar")
}

func TestParse_Expired(t *testing.T) {
	token, err := jwt.Generate("secret", "user-1", "admin", "agency-billing", -1)
	require.NoError(t, err)

	_, _, err = jwt.Parse("secret", token)
	assert.Error(t, err, "token expirado debe fallar")
}

func TestEmptySecret(t *testing.T) {
	_, err := jwt.Generate("", "user-1", "admin", "agency-billing", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)

	_, _, err = jwt.Parse("", "cualquier.token.valor")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	// token "alg":"none" con los mismos claims
	token := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1c2VyX2lkIjoidXNlci0xIiwicm9sZSI6ImFkbWluIn0."
	_, _, err := jwt.Parse("secret", token)
	assert.Error(t, err)
}
