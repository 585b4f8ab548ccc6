package security_test

import (
	"strings"
	"testing"

	"github.com/essyessentials/storefront-backend/pkg/config"
	"github.com/essyessentials/storefront-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	if _, err := security.HashPassword("short", config.PasswordConfig{}); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestRandomString(t *testing.T) {
	got, err := security.RandomString(6, security.Base36Alphabet)
	if err != nil {
		t.Fatalf("RandomString returned error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 characters, got %q", got)
	}
	for _, r := range got {
		if !strings.ContainsRune(security.Base36Alphabet, r) {
			t.Fatalf("unexpected character %q in %q", r, got)
		}
	}

	if _, err := security.RandomString(0, security.Base36Alphabet); err == nil {
		t.Fatal("expected non-positive length to fail")
	}
	if _, err := security.RandomString(4, ""); err == nil {
		t.Fatal("expected empty alphabet to fail")
	}
}

func TestNeedsRehash(t *testing.T) {
	cheap := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	hash, err := security.HashPassword("very-secure-password", cheap)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if security.NeedsRehash(hash, cheap) {
		t.Fatal("hash made with current costs should not need a rehash")
	}

	stronger := cheap
	stronger.ArgonTime = 2
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("changed costs should require a rehash")
	}
	if !security.NeedsRehash("garbage", cheap) {
		t.Fatal("malformed hash should require a rehash")
	}
}
