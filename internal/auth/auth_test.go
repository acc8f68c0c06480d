package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-portal/internal/model"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	token, expires, err := issuer.Issue(model.User{ID: 5, Username: "operador1", Rol: model.UserRoleOperator})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := NewParser("secret").Parse(token)
	require.NoError(t, err)
	principal := claims.Principal()
	assert.Equal(t, int64(5), principal.UserID)
	assert.Equal(t, "operador1", principal.Username)
	assert.True(t, principal.IsOperator())
}

func TestParseRejectsWrongSecretAndExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	token, _, err := issuer.Issue(model.User{ID: 1, Username: "admin", Rol: model.UserRoleAdmin})
	require.NoError(t, err)

	_, err = NewParser("other").Parse(token)
	require.Error(t, err)

	expired := NewIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(model.User{ID: 1, Username: "admin", Rol: model.UserRoleAdmin})
	require.NoError(t, err)
	_, err = NewParser("secret").Parse(old)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssueRefusesUserWithoutRole(t *testing.T) {
	_, _, err := NewIssuer("secret", time.Hour).Issue(model.User{ID: 3, Username: "nadie"})
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("clave-segura")
	require.NoError(t, err)
	assert.NotEqual(t, "clave-segura", hash)
	require.NoError(t, CheckPassword(hash, "clave-segura"))
	require.ErrorIs(t, CheckPassword(hash, "otra"), ErrPasswordMismatch)

	_, err = HashPassword("123")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}
