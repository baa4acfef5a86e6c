package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"
)

func generateKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	return key
}

func TestTokenRoundTrip(t *testing.T) {
	key := generateKey(t)

	token, err := NewToken(key, time.Minute, WithClaim("uid", "u-1"))
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	claims, err := ValidateToken(token, &key.PublicKey)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims["uid"] != "u-1" {
		t.Errorf("expected uid claim carried through, got %v", claims["uid"])
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	signing := generateKey(t)
	other := generateKey(t)

	token, err := NewToken(signing, time.Minute)
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	if _, err := ValidateToken(token, &other.PublicKey); err == nil {
		t.Fatal("expected validation against the wrong key to fail")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	key := generateKey(t)

	token, err := NewToken(key, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	if _, err := ValidateToken(token, &key.PublicKey); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
