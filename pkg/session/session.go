// Package session handles marketplace authentication: credential checks and
// bearer-token sessions. Tokens live in memory; restarting the server signs
// everyone out.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/lenshub/lenshub/pkg/market"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken indicates a sign-up against an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidToken indicates a missing, expired, or unknown session
	// token.
	ErrInvalidToken = errors.New("invalid session token")
)

type account struct {
	profileID    string
	passwordHash string
}

// Manager owns accounts and live sessions.
type Manager struct {
	mu       sync.RWMutex
	accounts map[string]account // keyed by username
	sessions map[string]string  // token -> profile ID
}

func NewManager() *Manager {
	return &Manager{
		accounts: make(map[string]account),
		sessions: make(map[string]string),
	}
}

// SignUp registers a username/password pair for a profile and returns a
// fresh session token.
func (m *Manager) SignUp(username, password, profileID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[username]; exists {
		return "", ErrUsernameTaken
	}

	m.accounts[username] = account{
		profileID:    profileID,
		passwordHash: hashPassword(password),
	}

	return m.issueLocked(profileID), nil
}

// SignIn checks the credentials and returns a fresh session token.
func (m *Manager) SignIn(username, password string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[username]
	if !ok || acct.passwordHash != hashPassword(password) {
		return "", "", ErrInvalidCredentials
	}

	return m.issueLocked(acct.profileID), acct.profileID, nil
}

// Resolve returns the profile ID a token belongs to.
func (m *Manager) Resolve(token string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profileID, ok := m.sessions[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return profileID, nil
}

// SignOut invalidates a token. Unknown tokens are a no-op.
func (m *Manager) SignOut(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Authorize resolves a token and checks the profile's role against the
// required one. Admins pass every check.
func (m *Manager) Authorize(token string, profile *market.Profile, required market.UserRole) error {
	if _, err := m.Resolve(token); err != nil {
		return err
	}
	if required == market.RoleAdmin && profile.Role != market.RoleAdmin {
		return ErrInvalidToken
	}
	return nil
}

func (m *Manager) issueLocked(profileID string) string {
	token := uuid.NewString()
	m.sessions[token] = profileID
	return token
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
