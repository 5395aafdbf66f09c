package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/caec/caec-backend/pkg/config"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

const (
	keyUserID = "user_id"
	keyEmail  = "email"

	hashKeyLen  = 64
	blockKeyLen = 32
)

// Principal is what a logged-in cookie carries.
type Principal struct {
	UserID int64
	Email  string
}

// Reader is the read-only surface middleware needs.
type Reader interface {
	Current(r *http.Request) (Principal, bool)
}

// Manager issues and reads the signed, encrypted session cookie.
type Manager struct {
	store  *sessions.CookieStore
	name   string
	maxAge int
	secure bool
}

// NewManager derives cookie keys from the configured secret.
func NewManager(cfg config.SessionConfig) (*Manager, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, errors.New("session cookie name is required")
	}

	hashKey, err := deriveKey(secret, "caec-session-hash", hashKeyLen)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "caec-session-block", blockKeyLen)
	if err != nil {
		return nil, err
	}

	maxAge := int(cfg.MaxAge().Seconds())
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.MaxAge(maxAge)

	return &Manager{store: store, name: name, maxAge: maxAge, secure: cfg.Secure}, nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("deriving %s key: %w", info, err)
	}
	return key, nil
}

// Start writes a cookie for p. Without remember the cookie dies with the browser.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, p Principal, remember bool) error {
	if p.UserID <= 0 {
		return errors.New("session principal requires a user id")
	}
	sess, _ := m.store.New(r, m.name)
	sess.Values[keyUserID] = p.UserID
	sess.Values[keyEmail] = p.Email
	sess.Options = m.options(0)
	if remember {
		sess.Options.MaxAge = m.maxAge
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Current reports the principal stored in the request cookie, if any.
func (m *Manager) Current(r *http.Request) (Principal, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess.IsNew {
		return Principal{}, false
	}
	userID, ok := sess.Values[keyUserID].(int64)
	if !ok || userID <= 0 {
		return Principal{}, false
	}
	email, _ := sess.Values[keyEmail].(string)
	return Principal{UserID: userID, Email: email}, true
}

// End expires the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.New(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options = m.options(-1)
	return sess.Save(r, w)
}

func (m *Manager) options(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
