package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caec/caec-backend/pkg/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.SessionConfig{
		Secret:     "test-session-secret-value",
		Name:       "caec_session",
		MaxAgeDays: 30,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestStartThenCurrentRoundTrip(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := m.Start(rec, req, Principal{UserID: 9, Email: "ana@caec.io"}, true); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cookie := cookieFrom(t, rec, "caec_session")
	if cookie.MaxAge != 30*24*60*60 {
		t.Fatalf("expected remembered max age, got %d", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Fatal("expected http-only cookie")
	}

	next := httptest.NewRequest(http.MethodGet, "/inicio", nil)
	next.AddCookie(cookie)
	p, ok := m.Current(next)
	if !ok {
		t.Fatal("expected session to be present")
	}
	if p.UserID != 9 || p.Email != "ana@caec.io" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestStartWithoutRememberIsBrowserSession(t *testing.T) {
	m := newTestManager(t)
	rec := httptest.NewRecorder()
	if err := m.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), Principal{UserID: 1}, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cookie := cookieFrom(t, rec, "caec_session")
	if cookie.MaxAge != 0 || !cookie.Expires.IsZero() {
		t.Fatalf("expected session cookie without expiry, got max_age=%d expires=%v", cookie.MaxAge, cookie.Expires)
	}
}

func TestCurrentWithoutCookie(t *testing.T) {
	m := newTestManager(t)
	if _, ok := m.Current(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("expected no session")
	}
}

func TestCurrentRejectsForeignCookie(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(config.SessionConfig{Secret: "a-completely-different-secret", Name: "caec_session", MaxAgeDays: 1})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := other.Start(rec, httptest.NewRequest(http.MethodPost, "/", nil), Principal{UserID: 3}, true); err != nil {
		t.Fatalf("Start: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookieFrom(t, rec, "caec_session"))
	if _, ok := m.Current(req); ok {
		t.Fatal("cookie signed with another secret must not be accepted")
	}
}

func TestEndExpiresCookie(t *testing.T) {
	m := newTestManager(t)
	rec := httptest.NewRecorder()
	if err := m.End(rec, httptest.NewRequest(http.MethodGet, "/logout", nil)); err != nil {
		t.Fatalf("End: %v", err)
	}
	if cookie := cookieFrom(t, rec, "caec_session"); cookie.MaxAge >= 0 {
		t.Fatalf("expected negative max age, got %d", cookie.MaxAge)
	}
}

func TestStartRequiresUserID(t *testing.T) {
	m := newTestManager(t)
	if err := m.Start(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), Principal{}, false); err == nil {
		t.Fatal("expected error for empty principal")
	}
}

func TestNewManagerValidatesConfig(t *testing.T) {
	if _, err := NewManager(config.SessionConfig{Name: "x"}); err == nil {
		t.Fatal("expected missing secret error")
	}
	if _, err := NewManager(config.SessionConfig{Secret: "long-enough-secret"}); err == nil {
		t.Fatal("expected missing name error")
	}
}
