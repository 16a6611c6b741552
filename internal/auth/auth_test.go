package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "1h")

	token, err := issuer.Generate("partner@example.com", "partner", "65f000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Email != "partner@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	if claims.Role != "partner" {
		t.Fatalf("role = %q", claims.Role)
	}
	if claims.SubjectID != "65f000000000000000000001" {
		t.Fatalf("subjectID = %q", claims.SubjectID)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", "1h")
	other := NewTokenIssuer("secret-b", "1h")

	token, err := issuer.Generate("a@b.c", "admin", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestTokenIssuerDefaultsBadExpiration(t *testing.T) {
	issuer := NewTokenIssuer("s", "not-a-duration")
	if issuer.Expiration != 24*time.Hour {
		t.Fatalf("expiration = %v, want 24h default", issuer.Expiration)
	}
}
