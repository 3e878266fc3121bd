// Package calendar implements date arithmetic for a simplified solar
// calendar: months 1-6 have 31 days, 7-11 have 30 days and month 12 has 29.
// There is no leap day, so every year is exactly 365 days long.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// CALENDAR CONSTANTS
// =============================================================================

const (
	// EpochYear anchors ordinal day numbers.
	EpochYear = 1300

	// MinYear and MaxYear bound the years accepted by IsValid.
	MinYear = 1300
	MaxYear = 1500

	DaysPerYear   = 365
	MonthsPerYear = 12
)

// YearRange returns the first and last year accepted by IsValid.
func YearRange() (first, last int) {
	return MinYear, MaxYear
}

// MonthLength returns the number of days in month (1-12).
// The table does not depend on the year.
func MonthLength(month int) int {
	switch {
	case month >= 1 && month <= 6:
		return 31
	case month >= 7 && month <= 11:
		return 30
	default:
		return 29
	}
}

// =============================================================================
// LOCAL DATE
// =============================================================================

// LocalDate is a day in the solar calendar. It is a value type; arithmetic
// returns new dates.
type LocalDate struct {
	Year  int
	Month int
	Day   int
}

// NewDate builds a date and validates it.
func NewDate(year, month, day int) (LocalDate, error) {
	d := LocalDate{Year: year, Month: month, Day: day}
	if err := d.Validate(); err != nil {
		return LocalDate{}, err
	}
	return d, nil
}

// MustDate is NewDate for literals known to be valid. It panics otherwise.
func MustDate(year, month, day int) LocalDate {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// IsValid reports whether d is inside the accepted year range and names a
// real month and day.
func IsValid(d LocalDate) bool {
	return d.Validate() == nil
}

// Validate returns an *InvalidDateError describing the first problem found.
func (d LocalDate) Validate() error {
	switch {
	case d.Year < MinYear || d.Year > MaxYear:
		return &InvalidDateError{Date: d, Reason: fmt.Sprintf("year must be in [%d, %d]", MinYear, MaxYear)}
	case d.Month < 1 || d.Month > MonthsPerYear:
		return &InvalidDateError{Date: d, Reason: "month must be in [1, 12]"}
	case d.Day < 1 || d.Day > MonthLength(d.Month):
		return &InvalidDateError{Date: d, Reason: fmt.Sprintf("day must be in [1, %d]", MonthLength(d.Month))}
	}
	return nil
}

// Comparison
func (d LocalDate) Before(other LocalDate) bool        { return Ordinal(d) < Ordinal(other) }
func (d LocalDate) After(other LocalDate) bool         { return Ordinal(d) > Ordinal(other) }
func (d LocalDate) Equal(other LocalDate) bool         { return d == other }
func (d LocalDate) BeforeOrEqual(other LocalDate) bool { return !d.After(other) }
func (d LocalDate) IsZero() bool                       { return d == LocalDate{} }

// Arithmetic
func (d LocalDate) AddDays(n int) LocalDate   { return AddDays(d, n) }
func (d LocalDate) AddMonths(n int) LocalDate { return AddMonths(d, n) }

// EndOfMonth returns the last day of d's month.
func (d LocalDate) EndOfMonth() LocalDate {
	return LocalDate{Year: d.Year, Month: d.Month, Day: MonthLength(d.Month)}
}

// DaysLeftInMonth counts d itself and every remaining day of its month.
func (d LocalDate) DaysLeftInMonth() int {
	return MonthLength(d.Month) - d.Day + 1
}

// String formats the date as YYYY/MM/DD.
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Parse reads YYYY/MM/DD (or YYYY-MM-DD) and validates the result.
func Parse(s string) (LocalDate, error) {
	s = strings.TrimSpace(s)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return LocalDate{}, &InvalidDateError{Reason: fmt.Sprintf("cannot parse %q, want YYYY/MM/DD", s)}
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return LocalDate{}, &InvalidDateError{Reason: fmt.Sprintf("cannot parse %q: %v", s, err)}
		}
		nums[i] = n
	}
	return NewDate(nums[0], nums[1], nums[2])
}

// MarshalText implements encoding.TextMarshaler.
func (d LocalDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *LocalDate) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// ORDINALS AND DAY ARITHMETIC
// =============================================================================

// DayOfYear returns the 1-based position of d within its year.
func DayOfYear(d LocalDate) int {
	days := 0
	for m := 1; m < d.Month; m++ {
		days += MonthLength(m)
	}
	return days + d.Day
}

// Ordinal returns an absolute day number counted from EpochYear. Every year
// counts as 365 days, so spans of several years drift from the real solar
// calendar by its leap days.
func Ordinal(d LocalDate) int {
	return (d.Year-EpochYear)*DaysPerYear + DayOfYear(d)
}

// DaysBetween returns the signed number of days from from to to.
func DaysBetween(from, to LocalDate) int {
	return Ordinal(to) - Ordinal(from)
}

// AddDays moves d by n days, carrying into following months and years for
// positive n and borrowing from preceding ones for negative n.
func AddDays(d LocalDate, n int) LocalDate {
	year, month, day := d.Year, d.Month, d.Day

	// Whole years are exact because every year has the same length.
	year += n / DaysPerYear
	day += n % DaysPerYear

	for day > MonthLength(month) {
		day -= MonthLength(month)
		month++
		if month > MonthsPerYear {
			month = 1
			year++
		}
	}

	for day < 1 {
		month--
		if month < 1 {
			month = MonthsPerYear
			year--
		}
		day += MonthLength(month)
	}

	return LocalDate{Year: year, Month: month, Day: day}
}

// AddMonths moves d by n months, rolling the year as needed. The day is
// clipped to the length of the resulting month.
func AddMonths(d LocalDate, n int) LocalDate {
	index := d.Year*MonthsPerYear + (d.Month - 1) + n
	year := index / MonthsPerYear
	month := index%MonthsPerYear + 1
	if index < 0 && index%MonthsPerYear != 0 {
		year--
		month += MonthsPerYear
	}
	day := d.Day
	if day > MonthLength(month) {
		day = MonthLength(month)
	}
	return LocalDate{Year: year, Month: month, Day: day}
}

// =============================================================================
// MONTH TABLE
// =============================================================================

var monthNames = [MonthsPerYear]string{
	"Farvardin", "Ordibehesht", "Khordad", "Tir", "Mordad", "Shahrivar",
	"Mehr", "Aban", "Azar", "Dey", "Bahman", "Esfand",
}

// MonthName returns the transliterated name of month, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > MonthsPerYear {
		return ""
	}
	return monthNames[month-1]
}

// LongString formats d as "day MonthName year", e.g. "10 Farvardin 1403".
func (d LocalDate) LongString() string {
	return fmt.Sprintf("%d %s %d", d.Day, MonthName(d.Month), d.Year)
}

// MonthInfo describes one month of the calendar.
type MonthInfo struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Days   int    `json:"days"`
}

// Months returns the month table in order.
func Months() []MonthInfo {
	months := make([]MonthInfo, MonthsPerYear)
	for i := range months {
		months[i] = MonthInfo{Number: i + 1, Name: MonthName(i + 1), Days: MonthLength(i + 1)}
	}
	return months
}
