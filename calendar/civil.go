package calendar

import "time"

// =============================================================================
// CIVIL (GREGORIAN) CONVERSION
// =============================================================================

// cumulative days before each Gregorian month in a common year
var civilMonthOffsets = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

const (
	civilEpochOffset = 355666 // day count that lines the two epochs up
	cycle33Days      = 12053  // 33 solar years
	cycle4Days       = 1461   // 4 solar years
	firstHalfDays    = 186    // six 31-day months
)

// FromCivil converts a Gregorian calendar date to the solar calendar.
// Only the date part of t is used, in t's own location.
//
// Gregorian leap years (4/100/400 rule) are honoured on the input side. The
// target calendar has no leap day, so the 30th day of month 12 that the
// formula yields in a real leap year is reported as day 29.
func FromCivil(t time.Time) LocalDate {
	gy, gm, gd := t.Year(), int(t.Month()), t.Day()

	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := civilEpochOffset + 365*gy +
		(gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 +
		gd + civilMonthOffsets[gm-1]

	year := -1595 + 33*(days/cycle33Days)
	days %= cycle33Days
	year += 4 * (days / cycle4Days)
	days %= cycle4Days
	if days > 365 {
		year += (days - 1) / 365
		days = (days - 1) % 365
	}

	var month, day int
	if days < firstHalfDays {
		month = 1 + days/31
		day = 1 + days%31
	} else {
		month = 7 + (days-firstHalfDays)/30
		day = 1 + (days-firstHalfDays)%30
	}

	if day > MonthLength(month) {
		day = MonthLength(month)
	}
	return LocalDate{Year: year, Month: month, Day: day}
}

// Today returns the current local date in the solar calendar.
func Today() LocalDate {
	return FromCivil(time.Now())
}
