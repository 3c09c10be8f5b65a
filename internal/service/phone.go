package service

import (
	"strings"
)

const phoneField = "phoneNumber"

var phoneSeparators = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "")

// NormalizePhone converts any accepted spelling of a Jordanian mobile
// number to the canonical form +9627XXXXXXXX. Accepted shapes after
// stripping spaces, hyphens and parentheses:
//
//	07XXXXXXXX   (national)
//	9627XXXXXXXX (country code without plus)
//	+9627XXXXXXXX
//
// Every phone-keyed lookup and write goes through this first, so the
// per-mall uniqueness constraint always sees one spelling per number.
func NormalizePhone(raw string) (string, error) {
	s := phoneSeparators.Replace(strings.TrimSpace(raw))
	if s == "" {
		return "", &InvalidPhoneError{Field: phoneField}
	}

	switch {
	case len(s) == 10 && strings.HasPrefix(s, "07") && allDigits(s):
		return "+962" + s[1:], nil
	case len(s) == 12 && strings.HasPrefix(s, "9627") && allDigits(s):
		return "+" + s, nil
	case len(s) == 13 && strings.HasPrefix(s, "+9627") && allDigits(s[1:]):
		return s, nil
	}
	return "", &InvalidPhoneError{Field: phoneField}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
