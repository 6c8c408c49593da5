package service

import (
	"regexp"
	"strings"
	"unicode"
)

// Shared field validation and normalization rules. The same rules run on
// manual entry, on OCR autofill, and at submission time so a value is treated
// identically regardless of where it came from.

var (
	phonePattern = regexp.MustCompile(`^\+639\d{9}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// emailDomains is the fixed provider allow-list. Government domains are
// accepted by suffix instead.
var emailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
}

// NormalizePhone converts local Philippine mobile numbers to the canonical
// +63 form. "09171234567" becomes "+639171234567". Strings already in +63
// form pass through; anything else is returned trimmed but untouched.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	if strings.HasPrefix(s, "09") && len(s) == 11 {
		return "+63" + s[1:]
	}
	return s
}

// ValidPhone reports whether the value matches the canonical Philippine
// mobile pattern: +639 followed by exactly nine digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidEmail reports whether the value is email-shaped and its domain is
// allowed: gmail.com, yahoo.com, hotmail.com, or any .gov / .gov.ph domain.
func ValidEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(email[at+1:])
	if emailDomains[domain] {
		return true
	}
	return strings.HasSuffix(domain, ".gov") || strings.HasSuffix(domain, ".gov.ph") || domain == "gov.ph"
}

// ValidPassword reports whether the password satisfies the complexity rule:
// at least 8 characters, an uppercase letter, a non-alphanumeric symbol, and
// no whitespace anywhere.
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasSymbol
}
