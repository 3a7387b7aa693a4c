package service

import (
	"errors"
	"testing"

	"github.com/marketgate/internal/config"
)

func TestValidatePassword(t *testing.T) {
	strict := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true, RequireSpecial: true}
	cases := []struct {
		password string
		key      string
	}{
		{"Ab1!", "min_length"},
		{"abcdefg1!", "require_upper"},
		{"ABCDEFG1!", "require_lower"},
		{"Abcdefgh!", "require_number"},
		{"Abcdefgh1", "require_special"},
		{"Abcdefg1!", ""},
	}
	for _, tc := range cases {
		err := validatePassword(strict, tc.password)
		if tc.key == "" {
			if err != nil {
				t.Fatalf("%q should pass: %v", tc.password, err)
			}
			continue
		}
		var policyErr *PasswordPolicyError
		if !errors.As(err, &policyErr) || policyErr.Rule != tc.key {
			t.Fatalf("%q want %s got %v", tc.password, tc.key, err)
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("policy error should match ErrWeakPassword")
		}
	}
	if err := validatePassword(config.PasswordPolicyConfig{}, "x"); err != nil {
		t.Fatalf("empty policy should accept anything: %v", err)
	}
}
