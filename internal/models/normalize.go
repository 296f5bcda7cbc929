package models

import "strings"

// NormalizePhone strips spaces and zero-width characters. Phone equality
// anywhere in the system is defined over this canonical form.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "\u200b", "")
	return phone
}

// NormalizeName lower-cases and trims a student name. Store keys and
// lookups both depend on this being applied consistently.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeSubject lower-cases and trims a subject name.
func NormalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}
