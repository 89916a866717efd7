package service

import (
	"context"
	"testing"
	"time"

	"github.com/pingme/pingme-server/internal/domain"
)

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)

	user := domain.User{ID: "u1", Email: "u1@example.com", Username: "alice"}
	token, err := svc.IssueToken(context.Background(), user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	result, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.UserID != "u1" || result.Email != "u1@example.com" {
		t.Fatalf("unexpected claims %+v", result)
	}

	// second validation hits the memo and must agree
	again, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("memoized validate failed: %v", err)
	}
	if again.UserID != result.UserID {
		t.Fatalf("memoized result diverged")
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	issuer := NewAuthService("secret-a", time.Hour)
	verifier := NewAuthService("secret-b", time.Hour)

	token, err := issuer.IssueToken(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := verifier.ValidateToken(context.Background(), token); err == nil {
		t.Fatalf("expected validation to fail under a different secret")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)
	if _, err := svc.ValidateToken(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("expected validation to fail")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService("test-secret", -time.Minute)

	token, err := svc.IssueToken(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
