package ast

import (
	"fmt"
	"time"
)

// Precision records which fields of a Date were present in the source text,
// per spec §3: a date may be written at day, minute, or second precision.
type Precision int

const (
	PrecisionDay Precision = iota
	PrecisionMinute
	PrecisionSecond
)

// Date is a calendar instant at one of three precisions. Ordering is always
// lexicographic on the normalized second-precision form; missing fields
// default to 00, so two dates of different precision compare the way a
// reader would expect (2023-01-02 orders before 2023-01-02T00:01).
type Date struct {
	time.Time
	Precision Precision
}

// NewDayDate builds a day-precision Date.
func NewDayDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Precision: PrecisionDay}
}

// ParseDate parses the three accepted forms: "2006-01-02",
// "2006-01-02T15:04", "2006-01-02T15:04:05".
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t, Precision: PrecisionDay}, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return Date{Time: t, Precision: PrecisionSecond}, nil
	}
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return Date{Time: t, Precision: PrecisionMinute}, nil
	}
	return Date{}, fmt.Errorf("invalid date: %q", s)
}

// Before reports whether d is strictly before o, comparing the normalized
// second-precision form.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether d and o represent the same instant.
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// AddSeconds returns a copy of d shifted by n seconds, used by the evaluator
// to date synthetic pad transactions one second before an assertion.
func (d Date) AddSeconds(n int) Date {
	return Date{Time: d.Time.Add(time.Duration(n) * time.Second), Precision: PrecisionSecond}
}

// String renders d back to its canonical textual form for the given
// precision.
func (d Date) String() string {
	switch d.Precision {
	case PrecisionSecond:
		return d.Time.Format("2006-01-02T15:04:05")
	case PrecisionMinute:
		return d.Time.Format("2006-01-02T15:04")
	default:
		return d.Time.Format("2006-01-02")
	}
}
