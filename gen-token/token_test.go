package main

import (
	"errors"
	"testing"
	"time"

	"sofia-api/api"
)

func TestSignedTokenPassesAPIAuth(t *testing.T) {
	secret := []byte("dev-secret")
	tok, err := signToken(secret, claimsFor("sofia", "journal", "sofia-api", time.Now(), time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	auth := api.NewSecretAuth(secret, "journal", "sofia-api")
	sub, err := auth.UserIDFromAuthHeader("Bearer " + tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "sofia" {
		t.Fatalf("expected sub sofia, got %q", sub)
	}

	if _, err := api.NewSecretAuth([]byte("other"), "", "").UserIDFromToken(tok); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestSignTokenRejectsNonPositiveTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Minute} {
		if _, err := signToken([]byte("s"), claimsFor("sofia", "", "", time.Now(), ttl)); !errors.Is(err, errBadTTL) {
			t.Fatalf("ttl %v: expected errBadTTL, got %v", ttl, err)
		}
	}
}

func TestClaimsWithoutAudience(t *testing.T) {
	c := claimsFor("sofia", "", "", time.Unix(1000, 0), time.Minute)
	if c.Audience != nil {
		t.Fatalf("expected no audience, got %v", c.Audience)
	}
	if c.ExpiresAt.Unix() != 1060 {
		t.Fatalf("unexpected expiry %v", c.ExpiresAt)
	}
}
