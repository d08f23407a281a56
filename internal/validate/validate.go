package validate

import (
	"regexp"
	"strings"
)

var (
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reType  = regexp.MustCompile(`^(ready_to_ship|made_to_order|scheduled_order)$`)
)

// Q validates a search query: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ProductType validates the fulfillment type enum; empty means legacy and is
// only acceptable where the caller says so.
func ProductType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reType.MatchString(s)
}

// Title validates a displayable product title.
func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}
