// Package credential stores the session bearer token and decodes the
// principal profile embedded in it.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/nhle/taskboard/internal/model"
)

// tokenKey is the keyring entry holding the session bearer token.
const tokenKey = "session-token"

// ErrNoToken is returned when no session token is stored.
var ErrNoToken = errors.New("no session token")

// Claims is the profile carried in a session token.
type Claims struct {
	Name  string     `json:"name,omitempty"`
	Email string     `json:"email,omitempty"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts the claims into a profile.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		ID:    c.Subject,
		Name:  c.Name,
		Email: c.Email,
		Role:  c.Role,
	}
}

// Session is the locally cached login: a bearer token in the vault.
// The embedded profile is read without verifying the signature; the API
// verifies it on every call.
type Session struct {
	vault  *Vault
	parser *jwt.Parser
}

// NewSession creates a Session over v.
func NewSession(v *Vault) *Session {
	return &Session{vault: v, parser: jwt.NewParser()}
}

// Token returns the stored bearer token or ErrNoToken.
func (s *Session) Token() (string, error) {
	token, err := s.vault.Get(tokenKey)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// HasToken reports whether a bearer token is stored.
func (s *Session) HasToken() bool {
	_, err := s.Token()
	return err == nil
}

// Principal decodes the profile from the stored token.
func (s *Session) Principal() (model.Principal, error) {
	token, err := s.Token()
	if err != nil {
		return model.Principal{}, err
	}
	claims, err := s.ParseClaims(token)
	if err != nil {
		return model.Principal{}, err
	}
	return claims.Principal(), nil
}

// ParseClaims decodes token without verifying its signature.
func (s *Session) ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("decoding session token: missing subject")
	}
	return claims, nil
}

// Login validates that token carries a profile and stores it.
func (s *Session) Login(token string) (model.Principal, error) {
	token = strings.TrimSpace(token)
	claims, err := s.ParseClaims(token)
	if err != nil {
		return model.Principal{}, err
	}
	if err := s.vault.Set(tokenKey, token); err != nil {
		return model.Principal{}, err
	}
	return claims.Principal(), nil
}

// Logout forgets the stored token.
func (s *Session) Logout() error {
	return s.vault.Delete(tokenKey)
}
