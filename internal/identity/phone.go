package identity

import (
	"regexp"
	"strings"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	phoneShape = regexp.MustCompile(`^\+?[0-9 ()\-.]+$`)
	emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// StripChannel removes a transport scheme such as "whatsapp:" from an address.
func StripChannel(address string) string {
	if i := strings.Index(address, ":"); i >= 0 {
		return address[i+1:]
	}
	return address
}

// NormalizePhone reduces a phone-shaped string to "+" followed by digits.
// It returns "" when the input is not phone-shaped.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(StripChannel(strings.TrimSpace(raw)))
	if raw == "" || !phoneShape.MatchString(raw) {
		return ""
	}

	var b strings.Builder
	b.WriteByte('+')
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			digits++
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return ""
	}
	return b.String()
}

// FormatPhone renders a normalised phone as "+CC NNN NNN NNNN" style groups.
// Country codes are not known here, so the grouping is positional from the right.
func FormatPhone(normalized string) string {
	digits := strings.TrimPrefix(normalized, "+")
	if len(digits) < 10 {
		return normalized
	}

	n := len(digits)
	cc := digits[:n-10]
	groups := []string{digits[n-10 : n-7], digits[n-7 : n-4], digits[n-4:]}
	if cc == "" {
		return strings.Join(groups, " ")
	}
	return "+" + cc + " " + strings.Join(groups, " ")
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailShape.MatchString(strings.TrimSpace(s))
}

// EmailLocalPart returns the part before "@".
func EmailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
