package auth

import (
	"testing"
	"time"
)

func TestIssueThenValidateRoundTrip(t *testing.T) {
	svc := NewTokenService(DefaultOptions([]byte("secret")))
	now := time.Now()

	token, err := svc.Issue("user-1", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, ok := svc.Validate(token, now.Add(1*time.Second))
	if !ok {
		t.Fatal("expected validate to succeed shortly after issue")
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestValidateFailsAfterTTLExpires(t *testing.T) {
	opts := DefaultOptions([]byte("secret"))
	opts.TTL = 5 * time.Second
	svc := NewTokenService(opts)
	now := time.Now()

	token, err := svc.Issue("user-1", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := svc.Validate(token, now.Add(10*time.Second)); ok {
		t.Fatal("expected validate to fail after TTL expiry")
	}
}

func TestValidateFailsForUnknownToken(t *testing.T) {
	svc := NewTokenService(DefaultOptions([]byte("secret")))
	if _, ok := svc.Validate("not-a-real-token", time.Now()); ok {
		t.Fatal("expected validate to fail for garbage input")
	}
}

func TestValidateFailsUnderWrongSecret(t *testing.T) {
	issuer := NewTokenService(DefaultOptions([]byte("secret-a")))
	verifier := NewTokenService(DefaultOptions([]byte("secret-b")))
	now := time.Now()

	token, err := issuer.Issue("user-1", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := verifier.Validate(token, now); ok {
		t.Fatal("expected validate to fail under a different signing secret")
	}
}

func TestRevokeInvalidatesTokenImmediately(t *testing.T) {
	svc := NewTokenService(DefaultOptions([]byte("secret")))
	now := time.Now()
	token, _ := svc.Issue("user-1", now)

	svc.Revoke(token)
	if _, ok := svc.Validate(token, now); ok {
		t.Fatal("expected revoked token to fail validation")
	}
}

func TestPurgeExpiredRemovesExpiredRecordOnce(t *testing.T) {
	opts := DefaultOptions([]byte("secret"))
	opts.TTL = 1 * time.Second
	svc := NewTokenService(opts)
	now := time.Now()

	expiring, _ := svc.Issue("user-expiring", now)
	_ = expiring

	opts2 := opts
	opts2.TTL = 1 * time.Hour
	svc2 := NewTokenService(opts2)
	_ = svc2

	n := svc.PurgeExpired(now.Add(10 * time.Second))
	if n != 1 {
		t.Fatalf("expected 1 expired record purged, got %d", n)
	}
	if n2 := svc.PurgeExpired(now.Add(10 * time.Second)); n2 != 0 {
		t.Fatalf("expected no records left to purge, got %d", n2)
	}
}

func TestIssueKeepsEarlierTokenForSameUserValid(t *testing.T) {
	svc := NewTokenService(DefaultOptions([]byte("secret")))
	now := time.Now()

	tokenA, _ := svc.Issue("user-1", now)
	tokenB, _ := svc.Issue("user-1", now.Add(time.Second))

	if _, ok := svc.Validate(tokenA, now.Add(time.Second)); !ok {
		t.Fatal("expected the first token to still validate independently")
	}
	if _, ok := svc.Validate(tokenB, now.Add(time.Second)); !ok {
		t.Fatal("expected the second token to validate")
	}
}
