package service

import (
	"strings"

	"github.com/noah-isme/maktab-bot/internal/models"
)

// FindChat resolves a student name to a registered chat by joining the
// weekly sheet (name → phone) with the bindings (chat → phone).
//
// Matching is case-insensitive exact on the name; the first matching sheet
// row wins when names repeat. A miss at either hop returns ok=false, never
// an error; unresolved students are a normal outcome.
func FindChat(name string, bindings map[string]string, rows []models.WeeklyRow) (string, bool) {
	var phone string
	found := false
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row.Name), strings.TrimSpace(name)) {
			phone = models.NormalizePhone(row.Phone)
			found = true
			break
		}
	}
	if !found || phone == "" {
		return "", false
	}

	for chatID, bound := range bindings {
		if models.NormalizePhone(bound) == phone {
			return chatID, true
		}
	}
	return "", false
}
