package user

import (
	"strings"
	"testing"
)

func TestGeneratePassword_Length(t *testing.T) {
	pw, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("GeneratePassword() error: %v", err)
	}
	if len(pw) != 16 {
		t.Errorf("expected length 16, got %d", len(pw))
	}
}

func TestGeneratePassword_CharacterClasses(t *testing.T) {
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword(16)
		if err != nil {
			t.Fatalf("GeneratePassword() error: %v", err)
		}
		if !strings.ContainsAny(pw, passwordUppercase) {
			t.Errorf("password %q missing an uppercase letter", pw)
		}
		if !strings.ContainsAny(pw, passwordLowercase) {
			t.Errorf("password %q missing a lowercase letter", pw)
		}
		if !strings.ContainsAny(pw, passwordDigits) {
			t.Errorf("password %q missing a digit", pw)
		}
		if !strings.ContainsAny(pw, passwordSpecial) {
			t.Errorf("password %q missing a special character", pw)
		}
	}
}

func TestGeneratePassword_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword(16)
		if err != nil {
			t.Fatalf("GeneratePassword() error: %v", err)
		}
		if seen[pw] {
			t.Fatalf("duplicate password generated: %s", pw)
		}
		seen[pw] = true
	}
}

func TestGeneratePassword_MinimumLength(t *testing.T) {
	pw, err := GeneratePassword(4)
	if err != nil {
		t.Fatalf("GeneratePassword() error: %v", err)
	}
	if len(pw) != 16 {
		t.Errorf("lengths below 8 should fall back to 16, got %d", len(pw))
	}
}
