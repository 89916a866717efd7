package usecase

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pingme/pingme-server/internal/domain"
)

func TestRegisterHashesPassword(t *testing.T) {
	users := newMemUserRepo()
	uc := NewUserUsecase(users)

	user, err := uc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected assigned id")
	}

	stored := users.users[user.ID]
	if stored.Password == "s3cret" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newMemUserRepo()
	uc := NewUserUsecase(users)

	if _, err := uc.Register(context.Background(), "alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := uc.Register(context.Background(), "impostor", "alice@example.com", "other")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if len(users.users) != 1 {
		t.Fatalf("duplicate registration changed state")
	}
}

func TestRegisterValidatesRequiredFields(t *testing.T) {
	uc := NewUserUsecase(newMemUserRepo())

	cases := [][3]string{
		{"", "a@example.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@example.com", ""},
	}
	for _, tc := range cases {
		if _, err := uc.Register(context.Background(), tc[0], tc[1], tc[2]); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected validation error for %v, got %v", tc, err)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	users := newMemUserRepo()
	uc := NewUserUsecase(users)

	registered, err := uc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := uc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("authenticated wrong user")
	}

	if _, err := uc.Authenticate(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected wrong password to fail as not-found, got %v", err)
	}
	if _, err := uc.Authenticate(context.Background(), "nobody@example.com", "s3cret"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown email to fail as not-found, got %v", err)
	}
}

func TestListReturnsPublicFieldsOnly(t *testing.T) {
	users := newMemUserRepo()
	uc := NewUserUsecase(users)

	if _, err := uc.Register(context.Background(), "alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := uc.Register(context.Background(), "bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	public, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("expected 2 users, got %d", len(public))
	}
	if public[0].Username != "alice" || public[1].Username != "bob" {
		t.Fatalf("unexpected ordering %+v", public)
	}
}
