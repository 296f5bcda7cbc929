package models

// DateLayout is the ISO date format used for every stored result date.
const DateLayout = "2006-01-02"

// ResultRow is a (subject, mark, date) triple as returned by store queries.
// Names and subjects are stored normalized; row identity in both tables is
// (student, subject, date).
type ResultRow struct {
	Subject string `db:"subject"`
	Mark    string `db:"mark"`
	Date    string `db:"date"`
}
