package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash("secret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if digest == "secret-pass" || digest == "" {
		t.Fatalf("digest must not echo the password")
	}
	if !strings.HasPrefix(digest, "$2") {
		t.Fatalf("unexpected digest format: %q", digest)
	}

	if !h.Verify("secret-pass", digest) {
		t.Fatalf("correct password should verify")
	}
	if h.Verify("wrong-pass", digest) {
		t.Fatalf("wrong password should not verify")
	}
}

func TestBcryptHasherMalformedDigest(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	for _, digest := range []string{"", "not-a-digest", "$2a$xx$corrupt"} {
		if h.Verify("secret-pass", digest) {
			t.Fatalf("malformed digest %q should not verify", digest)
		}
	}
}

func TestBcryptHasherFallbackCost(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(0)
	digest, err := h.Hash("secret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		t.Fatalf("cost inspect failed: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", cost)
	}
}
