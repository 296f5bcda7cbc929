package models

// Subject names as they appear in the school's sheets, normalized.
const (
	SubjectLanguage     = "таджикский язык"
	SubjectBiology      = "биология"
	SubjectChemistry    = "химия"
	SubjectPhysics      = "физика"
	SubjectTotalScore   = "общий балл"
	SubjectTotalPercent = "общий процент"
)

// SubjectCell is one subject column of a spreadsheet row. Marks stay
// strings; the formatter decides whether a value is percent-like.
type SubjectCell struct {
	Subject string
	Mark    string
}

// WeeklyRow is one student's row of the weekly sheet. Cells preserve the
// source column order.
type WeeklyRow struct {
	Name  string
	Phone string
	Cells []SubjectCell
}

// WeeklyTable is the parsed weekly sheet. HasPhones is false when the
// parent-phone column is absent: the table is still usable for display but
// phone matching is disabled.
type WeeklyTable struct {
	Rows      []WeeklyRow
	HasPhones bool
}

// MonthlyRow is one student's row of the monthly summary sheet, read at
// fixed column offsets.
type MonthlyRow struct {
	Name         string
	Language     string
	Biology      string
	Chemistry    string
	Physics      string
	TotalScore   string
	TotalPercent string
}

// Cells flattens the fixed monthly subject set into ordered cells keyed by
// the normalized subject names.
func (r MonthlyRow) Cells() []SubjectCell {
	return []SubjectCell{
		{Subject: SubjectLanguage, Mark: r.Language},
		{Subject: SubjectBiology, Mark: r.Biology},
		{Subject: SubjectChemistry, Mark: r.Chemistry},
		{Subject: SubjectPhysics, Mark: r.Physics},
		{Subject: SubjectTotalScore, Mark: r.TotalScore},
		{Subject: SubjectTotalPercent, Mark: r.TotalPercent},
	}
}
