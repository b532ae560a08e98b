package service

import (
	"unicode"

	"github.com/tinythreads/internal/config"
)

// bcrypt 只取前 72 字节，超过部分不参与校验
const bcryptMaxPasswordBytes = 72

// passwordPolicyError 携带 i18n 键，供接口层翻译
type passwordPolicyError struct {
	key  string
	args []any
}

func (e passwordPolicyError) Error() string        { return e.key }
func (e passwordPolicyError) Is(target error) bool { return target == ErrWeakPassword }
func (e passwordPolicyError) Key() string          { return e.key }
func (e passwordPolicyError) Args() []any          { return e.args }

type passwordTraits struct {
	upper, lower, number, special bool
}

func inspectPassword(password string) passwordTraits {
	var traits passwordTraits
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			traits.upper = true
		case unicode.IsLower(r):
			traits.lower = true
		case unicode.IsDigit(r):
			traits.number = true
		default:
			traits.special = true
		}
	}
	return traits
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if len(password) > bcryptMaxPasswordBytes {
		return passwordPolicyError{key: "error.password_too_long", args: []any{bcryptMaxPasswordBytes}}
	}
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_too_short", args: []any{policy.MinLength}}
	}

	traits := inspectPassword(password)
	checks := []struct {
		required bool
		present  bool
		key      string
	}{
		{policy.RequireUpper, traits.upper, "error.password_need_upper"},
		{policy.RequireLower, traits.lower, "error.password_need_lower"},
		{policy.RequireNumber, traits.number, "error.password_need_number"},
		{policy.RequireSpecial, traits.special, "error.password_need_special"},
	}
	for _, check := range checks {
		if check.required && !check.present {
			return passwordPolicyError{key: check.key}
		}
	}
	return nil
}
