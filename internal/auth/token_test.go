package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

func testUser() *User {
	return &User{ID: 42, Username: "casey", Email: "casey@example.com", Role: "admin"}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "casey@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("another-secret", time.Hour)

	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)

	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)

	issuer.WithNow(func() time.Time { return time.Now().Add(2 * time.Minute) })
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
