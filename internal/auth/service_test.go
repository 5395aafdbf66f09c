package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/pkg/db/models"
	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubUserRepository struct {
	user       *models.User
	findErr    error
	lastAccess map[int64]time.Time
	gotEmail   string
}

func (s *stubUserRepository) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	s.gotEmail = email
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil || s.user.Email != email || s.user.Password != password {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepository) UpdateLastAccess(ctx context.Context, id int64, at time.Time) error {
	if s.lastAccess == nil {
		s.lastAccess = map[int64]time.Time{}
	}
	s.lastAccess[id] = at
	return nil
}

type stubSystems struct {
	active *systems.SystemDTO
	err    error
}

func (s stubSystems) Active(ctx context.Context, userID int64) (*systems.SystemDTO, error) {
	return s.active, s.err
}

func newLoginService(t *testing.T, repo *stubUserRepository, sys stubSystems, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{UserRepo: repo, Systems: sys, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoginSuccessWithActiveSystem(t *testing.T) {
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	repo := &stubUserRepository{user: &models.User{ID: 5, Email: "ana@caec.io", Password: "secreto", Activo: true}}
	svc := newLoginService(t, repo, stubSystems{active: &systems.SystemDTO{ID: 1, CodigoSistema: "CAEC-2024-0001"}}, now)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "  ANA@caec.io ", Password: "secreto"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if repo.gotEmail != "ana@caec.io" {
		t.Fatalf("expected normalized email lookup, got %q", repo.gotEmail)
	}
	if !res.HasSystem || res.Redirect() != RedirectDashboard {
		t.Fatalf("expected dashboard redirect, got %+v", res)
	}
	if got, ok := repo.lastAccess[5]; !ok || !got.Equal(now) {
		t.Fatalf("expected last access recorded at %v, got %v", now, got)
	}
	if res.User.UltimoAcceso == nil || !res.User.UltimoAcceso.Equal(now) {
		t.Fatalf("expected returned user to carry last access")
	}
}

func TestLoginWithoutSystemRedirectsToAddSystem(t *testing.T) {
	repo := &stubUserRepository{user: &models.User{ID: 5, Email: "ana@caec.io", Password: "secreto", Activo: true}}
	svc := newLoginService(t, repo, stubSystems{}, time.Now())

	res, err := svc.Login(context.Background(), LoginRequest{Email: "ana@caec.io", Password: "secreto"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.HasSystem || res.Redirect() != RedirectAddSystem {
		t.Fatalf("expected add-system redirect, got %+v", res)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := &stubUserRepository{user: &models.User{ID: 5, Email: "ana@caec.io", Password: "secreto", Activo: true}}
	svc := newLoginService(t, repo, stubSystems{}, time.Now())

	cases := []LoginRequest{
		{Email: "ana@caec.io", Password: "wrong"},
		{Email: "", Password: "secreto"},
		{Email: "ana@caec.io", Password: ""},
		{Email: "nobody@caec.io", Password: "secreto"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected unauthorized for %+v, got %v", req, err)
		}
		if msg := pkgerrors.As(err).Message(); msg != invalidCredentialsMessage {
			t.Fatalf("unexpected message %q", msg)
		}
	}
	if len(repo.lastAccess) != 0 {
		t.Fatal("failed logins must not record access")
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := &stubUserRepository{user: &models.User{ID: 5, Email: "ana@caec.io", Password: "secreto", Activo: false}}
	svc := newLoginService(t, repo, stubSystems{}, time.Now())
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "ana@caec.io", Password: "secreto"}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginWrapsRepositoryFailure(t *testing.T) {
	repo := &stubUserRepository{findErr: errors.New("disk I/O error")}
	svc := newLoginService(t, repo, stubSystems{}, time.Now())
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "ana@caec.io", Password: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestNewServiceValidatesParams(t *testing.T) {
	if _, err := NewService(ServiceParams{Systems: stubSystems{}}); err == nil {
		t.Fatal("expected missing repo error")
	}
	if _, err := NewService(ServiceParams{UserRepo: &stubUserRepository{}}); err == nil {
		t.Fatal("expected missing systems error")
	}
}
