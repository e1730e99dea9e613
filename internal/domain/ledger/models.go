package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a transaction record.
type Type string

const (
	TypeIncome   Type = "INCOME"
	TypeExpense  Type = "EXPENSE"
	TypeTransfer Type = "TRANSFER"
)

// Record is a single transaction as read from the store. The query engine
// treats records as immutable; all writes belong to the import pipeline.
type Record struct {
	ID            string          `json:"id"`
	OwnerID       int64           `json:"ownerId"`
	PartnershipID *string         `json:"partnershipId,omitempty"`
	Amount        decimal.Decimal `json:"amount"` // signed, fixed-point
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
	Date          time.Time       `json:"date"` // stored and compared in UTC
	Type          Type            `json:"type"`
	AttachmentRef *string         `json:"attachmentRef,omitempty"`
}

// DateRange is an inclusive UTC range. Start must not be after End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range (inclusive on both ends).
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// WholeMonths reports whether the range covers exact calendar months, i.e.
// starts on the first instant of a month and ends on the last second of a month.
func (r DateRange) WholeMonths() bool {
	s := r.Start.UTC()
	e := r.End.UTC()
	if s.Day() != 1 || s.Hour() != 0 || s.Minute() != 0 || s.Second() != 0 {
		return false
	}
	next := e.Add(time.Second)
	return next.Day() == 1 && next.Hour() == 0 && next.Minute() == 0 && next.Second() == 0
}

// Previous returns the immediately preceding range of equal length.
// For whole-calendar-month ranges the preceding range is the same number of
// calendar months, so "this month" always compares against the full previous
// month regardless of month lengths. Otherwise the range is shifted back by
// its fixed duration.
func (r DateRange) Previous() DateRange {
	if r.WholeMonths() {
		months := monthsBetween(r.Start, r.End)
		end := r.Start.Add(-time.Second)
		start := time.Date(r.Start.Year(), r.Start.Month()-time.Month(months), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{Start: start, End: end}
	}
	length := r.End.Sub(r.Start)
	end := r.Start.Add(-time.Second)
	return DateRange{Start: end.Add(-length), End: end}
}

// monthsBetween counts the calendar months covered by a whole-month range.
func monthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}
