package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/noah-isme/maktab-bot/internal/models"
)

var subjectEmojis = map[string]string{
	models.SubjectLanguage:     "📚",
	models.SubjectBiology:      "🌱",
	models.SubjectChemistry:    "🧪",
	models.SubjectPhysics:      "⚡️",
	models.SubjectTotalScore:   "📊",
	models.SubjectTotalPercent: "✅",
}

const defaultEmoji = "🔹"

// FormatMark renders a raw score for chat output: fractions (≤1) scale to
// 0–100 percent, larger numbers round to whole percent, anything
// non-numeric passes through trimmed.
func FormatMark(raw string) string {
	trimmed := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return trimmed
	}
	if v <= 1 {
		return fmt.Sprintf("%d%%", int(math.Round(v*100)))
	}
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}

// FormatWeekly builds the weekly results message for one student. Subjects
// keep the source column order.
func FormatWeekly(name string, cells []models.SubjectCell) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Результаты прошедшей недели для %s:*\n\n", name)
	for _, cell := range cells {
		subject := models.NormalizeSubject(cell.Subject)
		emoji, ok := subjectEmojis[subject]
		if !ok {
			emoji = defaultEmoji
		}
		fmt.Fprintf(&b, "%s %s: %s\n", emoji, capitalize(subject), FormatMark(cell.Mark))
	}
	return b.String()
}

// FormatMonthly builds the monthly summary message for one student, with
// the per-subject maxima the school grades against.
func FormatMonthly(name string, row models.MonthlyRow) string {
	return fmt.Sprintf(
		"📅 *Месячный отчёт для %s*:\n\n"+
			"📚 Таджикский язык: %s из 75\n"+
			"🌱 Биология: %s из 150\n"+
			"🧪 Химия: %s из 175\n"+
			"⚡️ Физика: %s из 100\n"+
			"📊 Общий балл: %s из 500\n"+
			"✅ Процент: %s%%",
		name, row.Language, row.Biology, row.Chemistry, row.Physics, row.TotalScore, row.TotalPercent)
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
