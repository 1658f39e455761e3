package credential

import (
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(NewVault(keyring.NewArrayKeyring(nil)))
}

func TestSessionWithoutToken(t *testing.T) {
	s := newTestSession(t)

	assert.False(t, s.HasToken())
	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = s.Principal()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSessionLoginLogout(t *testing.T) {
	s := newTestSession(t)
	token, err := IssueToken([]byte("secret"), model.Principal{
		ID: "u-42", Name: "Ada", Email: "ada@example.com", Role: model.RoleStudent,
	}, time.Hour)
	require.NoError(t, err)

	p, err := s.Login(token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", p.ID)
	assert.True(t, s.HasToken())

	got, err := s.Principal()
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, got.Role)
	assert.Equal(t, "Ada", got.Name)

	require.NoError(t, s.Logout())
	assert.False(t, s.HasToken())
	// Logging out twice is harmless.
	require.NoError(t, s.Logout())
}

func TestSessionLoginRejectsGarbage(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Login("not-a-jwt")
	require.Error(t, err)
	assert.False(t, s.HasToken())
}

func TestSessionLoginRequiresSubject(t *testing.T) {
	s := newTestSession(t)
	token, err := IssueToken([]byte("secret"), model.Principal{Role: model.RoleTeacher}, time.Hour)
	require.NoError(t, err)

	_, err = s.Login(token)
	assert.Error(t, err)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken(nil, model.Principal{ID: "u"}, time.Hour)
	assert.Error(t, err)
}

func TestVerifyToken(t *testing.T) {
	secret := []byte("secret")
	token, err := IssueToken(secret, model.Principal{ID: "u-7", Role: model.RoleStudent}, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "u-7", claims.Subject)
	assert.Equal(t, model.RoleStudent, claims.Role)

	_, err = VerifyToken([]byte("other"), token)
	assert.Error(t, err)

	expired, err := IssueToken(secret, model.Principal{ID: "u-7"}, -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(secret, expired)
	assert.Error(t, err)
}
