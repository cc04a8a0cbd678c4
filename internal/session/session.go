// Package session provides Valkey-backed operator sessions. A session is
// anonymous: it only gives each browser a stable identity under which its
// list screens, filters and column preferences are kept.
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
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "hs_session"

	// DefaultTTL is how long a session lives in Valkey without a visit.
	DefaultTTL = 7 * 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random cookie value (32 bytes = 64 hex chars).
	idLength = 32
)

// Data is the session payload stored in Valkey. ID is the owner key used
// for screen state; the cookie value itself never leaves the session store.
type Data struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Owner returns the key under which per-operator state is stored.
func (d *Data) Owner() string {
	return d.ID.String()
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure marks the cookie HTTPS-only.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Create starts a new session and sets its cookie on the response.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter) (*Data, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("session create: %w", err)
	}

	data := &Data{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return data, nil
}

// Get retrieves the session named by the request cookie and extends its
// TTL. Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, keyPrefix+cookie.Value, s.ttl).Bytes()
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

// generateToken creates a cryptographically random cookie value.
func generateToken() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
