package service

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/marketgate/internal/config"
)

// PasswordPolicyError 密码不满足策略，Rule 为触发的规则名
type PasswordPolicyError struct {
	Rule   string
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return e.Reason
}

// Is 所有策略错误都匹配 ErrWeakPassword
func (e *PasswordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

type charClassRule struct {
	name    string
	reason  string
	enabled func(config.PasswordPolicyConfig) bool
	match   func(rune) bool
}

var charClassRules = []charClassRule{
	{
		name:    "require_upper",
		reason:  "password must contain an uppercase letter",
		enabled: func(p config.PasswordPolicyConfig) bool { return p.RequireUpper },
		match:   unicode.IsUpper,
	},
	{
		name:    "require_lower",
		reason:  "password must contain a lowercase letter",
		enabled: func(p config.PasswordPolicyConfig) bool { return p.RequireLower },
		match:   unicode.IsLower,
	},
	{
		name:    "require_number",
		reason:  "password must contain a digit",
		enabled: func(p config.PasswordPolicyConfig) bool { return p.RequireNumber },
		match:   unicode.IsDigit,
	},
	{
		name:    "require_special",
		reason:  "password must contain a special character",
		enabled: func(p config.PasswordPolicyConfig) bool { return p.RequireSpecial },
		match:   isSpecialRune,
	},
}

func isSpecialRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && utf8.RuneCountInString(password) < policy.MinLength {
		return &PasswordPolicyError{
			Rule:   "min_length",
			Reason: fmt.Sprintf("password must be at least %d characters", policy.MinLength),
		}
	}
	for _, rule := range charClassRules {
		if !rule.enabled(policy) || containsRune(password, rule.match) {
			continue
		}
		return &PasswordPolicyError{Rule: rule.name, Reason: rule.reason}
	}
	return nil
}

func containsRune(s string, match func(rune) bool) bool {
	for _, r := range s {
		if match(r) {
			return true
		}
	}
	return false
}
