package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for first/last name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims surrounding whitespace. Case is preserved for display;
// uniqueness comparisons use EmailKey.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// EmailKey is the comparison key for email uniqueness (case-insensitive).
func EmailKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
