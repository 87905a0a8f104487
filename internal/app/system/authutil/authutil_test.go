package authutil_test

import (
	"testing"

	"github.com/dalemusser/langis/internal/app/system/authutil"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := authutil.HashPassword("sprachkurs1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "sprachkurs1" {
		t.Fatal("hash should not equal the plaintext")
	}
	if !authutil.CheckPassword("sprachkurs1", hash) {
		t.Error("CheckPassword should accept the original password")
	}
	if authutil.CheckPassword("wrong-password9", hash) {
		t.Error("CheckPassword should reject a different password")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := authutil.ValidatePassword("kurz2024"); err != nil {
		t.Errorf("expected valid password, got %v", err)
	}
	for _, bad := range []string{"short1", "onlyletters", "12345678"} {
		if err := authutil.ValidatePassword(bad); err == nil {
			t.Errorf("ValidatePassword(%q): expected error", bad)
		}
	}
}
