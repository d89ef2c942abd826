// Package auth gates the web UI behind a login form.
//
// There are no accounts: any non-empty email and password are accepted.
// A successful login issues an opaque token that lives in memory until logout
// or process exit.
package auth

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/adapty/internal/errors"
)

// Credentials is what the login form submits.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Check accepts any credentials with a non-empty email and password.
func Check(c Credentials) error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return errors.NewUnauthorized("email and password are required")
	}
	return nil
}

type session struct {
	email    string
	issuedAt time.Time
}

// Tokens is the set of issued login tokens. Safe for concurrent use.
type Tokens struct {
	mu     sync.Mutex
	tokens map[string]session
	now    func() time.Time
}

// NewTokens creates an empty token set.
func NewTokens() *Tokens {
	return &Tokens{tokens: make(map[string]session), now: time.Now}
}

// Login checks c and issues a new token.
func (t *Tokens) Login(c Credentials) (string, error) {
	if err := Check(c); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	token := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	t.tokens[token] = session{email: strings.TrimSpace(c.Email), issuedAt: now}
	return token, nil
}

// Valid reports whether token was issued and not revoked.
func (t *Tokens) Valid(token string) bool {
	if token == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tokens[token]
	return ok
}

// Email returns the address the token was issued to.
func (t *Tokens) Email(token string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.tokens[token]
	return s.email, ok
}

// Logout revokes token. Unknown tokens are ignored.
func (t *Tokens) Logout(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokens, token)
}

// Len returns the number of live tokens.
func (t *Tokens) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tokens)
}
