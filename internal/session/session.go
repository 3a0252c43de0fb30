// Package session keeps operator sessions in Valkey. The browser only holds
// a random ID in an HttpOnly cookie. The payload lives under session:<id>
// with a TTL that depends on whether the operator has passed TOTP yet.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "lp_session"

	// DefaultTTL applies to sessions that completed two-factor verification.
	DefaultTTL = 12 * time.Hour

	// PendingTTL bounds the window between a correct password and a
	// correct TOTP code.
	PendingTTL = 10 * time.Minute

	keyPrefix = "session:"
	idLength  = 32
)

// ErrNoSession is returned by Update when the request carries no usable
// session cookie.
var ErrNoSession = errors.New("no session")

// Data is the session payload.
type Data struct {
	OperatorID  uuid.UUID `json:"operator_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	TwoFADone   bool      `json:"two_fa_done"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store. secure marks cookies HTTPS-only.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

func (s *Store) ttlFor(data *Data) time.Duration {
	if data.TwoFADone {
		return s.ttl
	}
	return PendingTTL
}

// Create stores a new session and sets its cookie. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	data.CreatedAt = time.Now().UTC()

	if err := s.save(ctx, id, data); err != nil {
		return "", err
	}
	s.setCookie(w, id, 0)
	return id, nil
}

// Get loads the session named by the request cookie. A missing, malformed
// or expired session is (nil, nil).
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := cookieID(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Update overwrites the payload under the current ID and resets its TTL,
// which grows from PendingTTL to DefaultTTL once TwoFADone is set.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	id, ok := cookieID(r)
	if !ok {
		return fmt.Errorf("session update: %w", ErrNoSession)
	}
	return s.save(ctx, id, data)
}

// Destroy deletes the session and expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, ok := cookieID(r)
	if !ok {
		return nil
	}
	s.setCookie(w, "", -1)
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, id string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttlFor(data)).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

// setCookie writes the session cookie. maxAge 0 makes it a browser-session
// cookie; Valkey expiry decides how long it is honored.
func (s *Store) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// cookieID returns the session ID if the cookie holds a well-formed one.
func cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || len(c.Value) != 2*idLength {
		return "", false
	}
	if _, err := hex.DecodeString(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
