package workhours

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultWorkingHours is assumed when office times are missing or invalid.
const DefaultWorkingHours = 9.0

// Config carries the calculator inputs taken from the office settings form.
// WorkingHoursPerDay and HalfDayHours are explicit overrides; zero means
// derive them from the office time window.
type Config struct {
	OfficeStartTime    string
	OfficeEndTime      string
	SaturdayPolicy     SaturdayPolicy
	WorkingHoursPerDay float64
	HalfDayHours       float64
}

// HoursPerDay resolves the daily working hours: the override when set,
// otherwise the office window as fractional hours, otherwise the default.
func (c Config) HoursPerDay() float64 {
	if c.WorkingHoursPerDay > 0 {
		return Round1(c.WorkingHoursPerDay)
	}
	start, okStart := parseClock(c.OfficeStartTime)
	end, okEnd := parseClock(c.OfficeEndTime)
	if !okStart || !okEnd || end <= start {
		return DefaultWorkingHours
	}
	return Round1(float64(end-start) / 60)
}

// HalfDay resolves the half-day hours: the override when set, otherwise
// half the full-day hours.
func (c Config) HalfDay(hoursPerDay float64) float64 {
	if c.HalfDayHours > 0 {
		return Round1(c.HalfDayHours)
	}
	return Round1(hoursPerDay / 2)
}

// Compute derives the expected working time for one calendar month.
//
// Sundays are skipped outright. Each Saturday consults the policy slot for
// its occurrence within the month. Holiday records intersecting the month
// count once each by day type: full-day holidays remove full working days,
// half-day holidays convert a full day into a half day (or, when no full
// days remain, remove an existing half day). Day counts never go negative.
func Compute(year int, month time.Month, cfg Config, holidays []Holiday) MonthData {
	hoursPerDay := cfg.HoursPerDay()
	halfDayHours := cfg.HalfDay(hoursPerDay)

	var fullDays, halfDays int
	saturday := 0
	for day := 1; day <= DaysInMonth(year, month); day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		switch date.Weekday() {
		case time.Sunday:
			// Not a working day in any form.
		case time.Saturday:
			switch cfg.SaturdayPolicy.Rule(saturday) {
			case SaturdayFull:
				fullDays++
			case SaturdayHalf:
				halfDays++
			}
			saturday++
		default:
			fullDays++
		}
	}

	fullHolidays, halfHolidays := CountHolidays(year, month, holidays)

	fullDays -= fullHolidays
	if fullDays < 0 {
		fullDays = 0
	}
	for i := 0; i < halfHolidays; i++ {
		switch {
		case fullDays > 0:
			fullDays--
			halfDays++
		case halfDays > 0:
			halfDays--
		}
	}
	if halfDays < 0 {
		halfDays = 0
	}

	return MonthData{
		WorkingHoursPerDay: hoursPerDay,
		HalfDayHours:       halfDayHours,
		TotalWorkingDays:   fullDays + halfDays,
		FullWorkingDays:    fullDays,
		HalfWorkingDays:    halfDays,
		TotalExpectedHours: Round1(float64(fullDays)*hoursPerDay + float64(halfDays)*halfDayHours),
		Holidays:           HolidayCount{Full: fullHolidays, Half: halfHolidays},
	}
}

// CountHolidays counts holiday records whose date range intersects the
// month, one count per record regardless of span length.
func CountHolidays(year int, month time.Month, holidays []Holiday) (full, half int) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	for _, h := range holidays {
		start, end, ok := h.Span()
		if !ok {
			continue
		}
		if start.Before(monthEnd) && !end.Before(monthStart) {
			switch h.DayType {
			case DayTypeFull:
				full++
			case DayTypeHalf:
				half++
			}
		}
	}
	return full, half
}

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SaturdayCount returns how many Saturdays the month contains.
func SaturdayCount(year int, month time.Month) int {
	count := 0
	for day := 1; day <= DaysInMonth(year, month); day++ {
		if time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday() == time.Saturday {
			count++
		}
	}
	return count
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// parseClock reads "15:04" or "15:04:05" as minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
