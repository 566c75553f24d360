package workhours

import (
	"fmt"
	"time"
)

// SaturdayRule classifies one Saturday occurrence within a month.
type SaturdayRule string

const (
	SaturdayFull SaturdayRule = "full-day"
	SaturdayHalf SaturdayRule = "half-day"
	SaturdayOff  SaturdayRule = "off"
)

// SaturdayPolicySlots is the fixed length of a Saturday policy. Months with
// only four Saturdays leave the last slot unused.
const SaturdayPolicySlots = 5

// SaturdayPolicy maps the Nth Saturday of a month (0-based) to its rule.
type SaturdayPolicy [SaturdayPolicySlots]SaturdayRule

// Rule returns the rule for the given Saturday occurrence.
func (p SaturdayPolicy) Rule(occurrence int) SaturdayRule {
	return p[occurrence%SaturdayPolicySlots]
}

// HolidayCount splits a month's holiday records by day type.
type HolidayCount struct {
	Full int `json:"full"`
	Half int `json:"half"`
}

// MonthData is the stored working-day and expected-hours summary for one
// calendar month.
type MonthData struct {
	WorkingHoursPerDay float64      `json:"working_hours_per_day"`
	HalfDayHours       float64      `json:"half_day_hours"`
	TotalWorkingDays   int          `json:"total_working_days"`
	FullWorkingDays    int          `json:"full_working_days"`
	HalfWorkingDays    int          `json:"half_working_days"`
	TotalExpectedHours float64      `json:"total_expected_hours"`
	Holidays           HolidayCount `json:"holidays"`
}

// Computed reports whether the month holds usable numbers. All-zero data is
// indistinguishable from "never computed" and triggers a recompute.
func (m MonthData) Computed() bool {
	return m.TotalWorkingDays != 0 && m.FullWorkingDays != 0
}

// Reset returns the month zeroed while keeping its configured hour rates.
func (m MonthData) Reset() MonthData {
	return MonthData{
		WorkingHoursPerDay: m.WorkingHoursPerDay,
		HalfDayHours:       m.HalfDayHours,
	}
}

// OfficeSettings is the tenant-wide singleton persisted under the
// companyDetails resource.
type OfficeSettings struct {
	ID                  string               `json:"id,omitempty"`
	OfficeStartTime     string               `json:"office_start_time"`
	OfficeEndTime       string               `json:"office_end_time"`
	LateThreshold       string               `json:"late_threshold,omitempty"`
	EarlyLeaveThreshold string               `json:"early_leave_threshold,omitempty"`
	SaturdayPolicy      SaturdayPolicy       `json:"saturday_policy"`
	MonthlySettings     map[string]MonthData `json:"monthly_settings,omitempty"`
}

func (s OfficeSettings) EntityID() string { return s.ID }

// Holiday day types.
const (
	DayTypeFull = "full"
	DayTypeHalf = "half"
)

// Holiday is a read-only calculator input. Single-day records carry Date;
// ranged records carry StartDate and EndDate.
type Holiday struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Date      string `json:"date,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	DayType   string `json:"day_type"`
}

func (h Holiday) EntityID() string { return h.ID }

// Span resolves the holiday's date range. Ranges missing an end collapse to
// a single day; unparseable records report ok=false and are skipped.
func (h Holiday) Span() (start, end time.Time, ok bool) {
	first := h.StartDate
	if first == "" {
		first = h.Date
	}
	start, err := time.Parse("2006-01-02", first)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end = start
	if h.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", h.EndDate); err == nil && !parsed.Before(start) {
			end = parsed
		}
	}
	return start, end, true
}

// Leave statuses.
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// Leave is an employee leave record. Only approved leaves count against
// attendance; that filter is the attendance view's concern, not the
// calculator's, which consumes holidays only.
type Leave struct {
	ID          string `json:"id,omitempty"`
	EmployeeID  string `json:"employee_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	IsHalfDay   bool   `json:"is_half_day,omitempty"`
	HalfDayType string `json:"half_day_type,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func (l Leave) EntityID() string { return l.ID }

// Approved reports whether the leave affects computed attendance.
func (l Leave) Approved() bool { return l.Status == LeaveStatusApproved }

// MonthKey returns the "YYYY-MM" key under which MonthData is stored.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParseMonthKey parses a "YYYY-MM" key.
func ParseMonthKey(key string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t.Year(), t.Month(), nil
}
