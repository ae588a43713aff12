package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/login-wall/internal/users"
)

func newTestService() (*Service, *users.MemoryStore) {
	store := users.NewMemoryStore()
	return NewService(store, WithHashCost(bcrypt.MinCost)), store
}

// racyStore は事前確認をすり抜けた同時サインアップを再現します。
type racyStore struct {
	users.Store
}

func (racyStore) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	return nil, nil
}

func (racyStore) Insert(ctx context.Context, username, email, hash string) (string, error) {
	return "", users.ErrUsernameTaken
}

type brokenStore struct {
	users.Store
}

func (brokenStore) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	return nil, errors.New("connection lost")
}

func TestSignupThenLogin(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	for _, tc := range []struct{ username, email, password string }{
		{"goku", "goku@ex.com", "kamehameha"},
		{"vegeta", "", "final flash"},
		{"ブルマ", "bulma@capsule.co", "パスワード"},
	} {
		name, err := svc.Signup(ctx, tc.username, tc.email, tc.password)
		if err != nil {
			t.Fatalf("Signup(%q) error: %v", tc.username, err)
		}
		if name != tc.username {
			t.Fatalf("Signup returned %q, want %q", name, tc.username)
		}

		stored, err := store.FindByUsername(ctx, tc.username)
		if err != nil || stored == nil {
			t.Fatalf("FindByUsername(%q) = %v, %v", tc.username, stored, err)
		}
		if stored.HashedPassword == tc.password {
			t.Fatalf("password for %q stored in plaintext", tc.username)
		}

		user, err := svc.Login(ctx, tc.username, tc.password)
		if err != nil {
			t.Fatalf("Login(%q) error: %v", tc.username, err)
		}
		if user.Username != tc.username {
			t.Fatalf("Login returned %q, want %q", user.Username, tc.username)
		}
	}
}

func TestSignupValidation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	cases := []struct {
		name                      string
		username, email, password string
	}{
		{"empty username", "", "a@ex.com", "pw"},
		{"empty password", "goku", "a@ex.com", ""},
		{"long username", strings.Repeat("u", 65), "", "pw"},
		{"long email", "goku", strings.Repeat("e", 65), "pw"},
		{"long password", "goku", "", strings.Repeat("p", 73)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.username, tc.email, tc.password)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("validation failures must not persist anything, got %d users", len(list))
	}

	// 文字数で数えるので、マルチバイトでも64文字までは通る
	if _, err := svc.Signup(ctx, strings.Repeat("悟", 64), "", "pw"); err != nil {
		t.Fatalf("64-character username rejected: %v", err)
	}
}

func TestSignupConflict(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "goku", "goku@ex.com", "kamehameha"); err != nil {
		t.Fatalf("first signup error: %v", err)
	}

	_, err := svc.Signup(ctx, "goku", "other@ex.com", "other")
	if !errors.Is(err, ErrConflict) || !errors.Is(err, users.ErrUsernameTaken) {
		t.Fatalf("expected conflict, got %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 user, got %d", len(list))
	}
}

func TestSignupConflictFromStorageConstraint(t *testing.T) {
	svc := NewService(racyStore{}, WithHashCost(bcrypt.MinCost))

	_, err := svc.Signup(context.Background(), "goku", "", "kamehameha")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if authErr.Message != msgUsernameTaken {
		t.Fatalf("message = %q", authErr.Message)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "goku", "goku@ex.com", "kamehameha"); err != nil {
		t.Fatalf("signup error: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, "goku", "genkidama")
	_, unknownUser := svc.Login(ctx, "frieza", "kamehameha")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v / %v", wrongPassword, unknownUser)
	}

	// 内部的には区別できる
	if !errors.Is(wrongPassword, ErrPasswordMismatch) || errors.Is(wrongPassword, ErrUnknownUser) {
		t.Fatalf("wrong password reason = %v", wrongPassword)
	}
	if !errors.Is(unknownUser, ErrUnknownUser) {
		t.Fatalf("unknown user reason = %v", unknownUser)
	}

	var a, b *Error
	if !errors.As(wrongPassword, &a) || !errors.As(unknownUser, &b) {
		t.Fatal("expected *Error for both failures")
	}
	if a.Message != b.Message || statusFor(a.Kind) != statusFor(b.Kind) {
		t.Fatalf("responses differ: %q/%d vs %q/%d", a.Message, statusFor(a.Kind), b.Message, statusFor(b.Kind))
	}
}

func TestLoginRejectsSuffixBeyondBcryptLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	password := strings.Repeat("k", maxPasswordBytes)

	if _, err := svc.Signup(ctx, "goku", "", password); err != nil {
		t.Fatalf("signup with 72-byte password error: %v", err)
	}
	if _, err := svc.Login(ctx, "goku", password); err != nil {
		t.Fatalf("login with exact password error: %v", err)
	}

	_, err := svc.Login(ctx, "goku", password+"-wrong-suffix")
	if !errors.Is(err, ErrInvalidCredentials) || !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected password mismatch, got %v", err)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty username: %v", err)
	}
	if _, err := svc.Login(context.Background(), "goku", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty password: %v", err)
	}
}

func TestStoreFailureIsInfrastructureError(t *testing.T) {
	svc := NewService(brokenStore{}, WithHashCost(bcrypt.MinCost))
	var authErr *Error

	_, err := svc.Login(context.Background(), "goku", "pw")
	if err == nil || errors.As(err, &authErr) {
		t.Fatalf("store failures must not be classified as auth errors: %v", err)
	}

	_, err = svc.Signup(context.Background(), "goku", "", "pw")
	if err == nil || errors.As(err, &authErr) {
		t.Fatalf("store failures must not be classified as auth errors: %v", err)
	}
}
