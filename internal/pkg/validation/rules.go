package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Tag names of the custom rules registered by RegisterRules.
const (
	ScriptAlphaTag = "scriptalpha"
	PhoneTag       = "phone"
)

// zero width non-joiner, used inside Persian words
const zwnj = '\u200c'

// Name validation min/max length
var (
	NameMinLength = 2
	NameMaxLength = 100
)

// Phone number pattern: optional leading +, then digits with optional spaces or dashes
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)

// IsScriptAlphaName reports whether every whitespace separated token of name consists
// of letters of a single alphabet-like script. Combining marks may follow a letter and
// a zero width non-joiner may appear between letters.
func IsScriptAlphaName(name string) bool {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if !isAlphaToken(token) {
			return false
		}
	}
	return true
}

func isAlphaToken(token string) bool {
	runes := []rune(token)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r):
		case unicode.Is(unicode.Mn, r) && i > 0:
		case r == zwnj && i > 0 && i < len(runes)-1:
		default:
			return false
		}
	}
	return true
}

// NormalizeName trims the name and collapses inner whitespace to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// IsPhoneNumber reports whether s looks like a phone number.
func IsPhoneNumber(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// RegisterRules registers the custom validation tags on v.
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation(ScriptAlphaTag, func(fl validator.FieldLevel) bool {
		return IsScriptAlphaName(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation(PhoneTag, func(fl validator.FieldLevel) bool {
		return IsPhoneNumber(fl.Field().String())
	})
}
