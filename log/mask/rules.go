package mask

import (
	"fmt"
	"regexp"
)

// Rule rewrites every match of Pattern with Replacement.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// NewRule compiles a content rule.
func NewRule(name, pattern, replacement string) (*Rule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return &Rule{Name: name, Pattern: regex, Replacement: replacement}, nil
}

// MustNewRule compiles a rule and panics on error. Used for builtins.
func MustNewRule(name, pattern, replacement string) *Rule {
	rule, err := NewRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

// NewFieldRule masks the value of a JSON field, e.g. "token":"..." .
func NewFieldRule(name, field string) (*Rule, error) {
	return NewRule(name, `("`+regexp.QuoteMeta(field)+`"\s*:\s*")[^"]*(")`, "${1}******${2}")
}

// MustNewFieldRule is NewFieldRule that panics on error.
func MustNewFieldRule(name, field string) *Rule {
	rule, err := NewFieldRule(name, field)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *Rule) Apply(s string) string {
	return r.Pattern.ReplaceAllString(s, r.Replacement)
}

var (
	// BearerRule masks the credential part of Authorization headers
	// (Bearer eyJhbGciOi... -> Bearer ******).
	BearerRule = MustNewRule(
		"bearer",
		`(?i)(bearer\s+)[A-Za-z0-9\-._~+/]+=*`,
		"${1}******",
	)

	// TokenFieldRule masks "token" JSON fields.
	TokenFieldRule = MustNewFieldRule("token", "token")

	// RefreshTokenFieldRule masks "refreshToken" JSON fields.
	RefreshTokenFieldRule = MustNewFieldRule("refresh_token", "refreshToken")

	// PasswordFieldRule masks "password" JSON fields.
	PasswordFieldRule = MustNewFieldRule("password", "password")
)

// BuiltinRules returns the credential rules applied by default.
func BuiltinRules() []*Rule {
	return []*Rule{
		BearerRule,
		TokenFieldRule,
		RefreshTokenFieldRule,
		PasswordFieldRule,
	}
}
