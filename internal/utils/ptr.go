package utils

import (
	"strings"
	"unicode/utf8"
)

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// CleanName trims s and reports whether it is non-empty and at most limit
// characters long.
func CleanName(s string, limit int) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	return s, n > 0 && n <= limit
}
