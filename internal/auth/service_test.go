package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/writgo/theorie/internal/platform/database/dbtest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryStore(), "test-secret", time.Hour)
}

func TestSignup_AlwaysStudent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Email: "  Leerling@Example.nl ", Password: "geheim123"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if u.Role != RoleStudent {
		t.Errorf("Role = %q, want STUDENT", u.Role)
	}
	if u.Email != "leerling@example.nl" {
		t.Errorf("Email = %q, want normalized", u.Email)
	}
	if u.PasswordHash == "" || strings.Contains(u.PasswordHash, "geheim123") {
		t.Error("password should be hashed")
	}

	if _, err := svc.Signup(ctx, SignupInput{Email: "leerling@example.nl", Password: "anders123"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Signup() error = %v, want ErrEmailTaken", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, SignupInput{Email: "admin@example.nl", Password: "beheer123"}, RoleAdmin); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "admin@example.nl", "beheer123", nil},
		{"case-insensitive email", "ADMIN@example.nl", "beheer123", nil},
		{"wrong password", "admin@example.nl", "fout", ErrInvalidCredentials},
		{"unknown user", "niemand@example.nl", "beheer123", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, u, err := svc.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			claims, err := svc.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.UserID() != u.ID || !claims.IsAdmin() {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestVerify_Rejects(t *testing.T) {
	svc := newTestService(t)
	u := User{ID: "u1", Email: "a@b.nl", Role: RoleStudent}

	other := NewService(NewMemoryStore(), "other-secret", time.Hour)
	foreign, _ := other.Issue(u)

	expiredSvc := newTestService(t)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredSvc.Issue(u)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestContextClaims(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context should carry no claims")
	}
	ctx := WithClaims(context.Background(), Claims{Role: RoleAdmin})
	c, ok := FromContext(ctx)
	if !ok || !c.IsAdmin() {
		t.Errorf("FromContext() = %+v, %v", c, ok)
	}
}

func TestPostgresStore(t *testing.T) {
	pool := dbtest.NewPool(t)
	store, err := NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	svc := NewService(store, "secret", time.Hour)
	ctx := context.Background()

	if ok, err := svc.HasUsers(ctx); err != nil || ok {
		t.Fatalf("HasUsers() = %v, %v; want false", ok, err)
	}
	u, err := svc.Signup(ctx, SignupInput{Email: "pg@example.nl", Password: "wachtwoord", FirstName: "Piet"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "pg@example.nl", Password: "wachtwoord"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate error = %v, want ErrEmailTaken", err)
	}

	token, _, err := svc.Login(ctx, "pg@example.nl", "wachtwoord")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, _ := svc.Verify(token)
	got, err := svc.User(ctx, claims)
	if err != nil || got.ID != u.ID || got.FirstName != "Piet" || got.LastName != "" {
		t.Errorf("User() = %+v, %v", got, err)
	}
	if _, err := store.GetUser(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser(missing) error = %v", err)
	}
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := NewPostgresStore(nil); err == nil {
		t.Error("expected error for nil pool")
	}
}
