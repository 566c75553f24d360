// Package officetime manages the office-hours settings singleton: loading
// and persisting it through the companyDetails resource and keeping each
// month's expected-hours summary in step with the configuration.
package officetime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/staffhive/console-client-go/api"
	"github.com/staffhive/console-client-go/workhours"
)

// ErrNoSettings is returned when the tenant has no settings record yet.
var ErrNoSettings = errors.New("office settings not configured")

// DefaultDebounce is the delay between a form edit and the recomputation it
// triggers. Rapid edits supersede each other; only the last one fires.
const DefaultDebounce = 300 * time.Millisecond

// Draft mirrors the editable settings form fields. Zero hour values mean
// "derive from the office time window".
type Draft struct {
	OfficeStartTime     string
	OfficeEndTime       string
	LateThreshold       string
	EarlyLeaveThreshold string
	SaturdayPolicy      workhours.SaturdayPolicy
	WorkingHoursPerDay  float64
	HalfDayHours        float64
}

// Service loads, edits and persists the office settings singleton.
//
// A month's stored summary is reused as long as it carries non-zero day
// counts, preserving manually adjusted history; recomputation only happens
// for months with no stored data or all-zero stored data.
type Service struct {
	settings *api.Resource[workhours.OfficeSettings]
	holidays *api.Resource[workhours.Holiday]

	// OnRecompute receives the result of every debounced recomputation.
	OnRecompute func(workhours.MonthData, error)

	mu       sync.Mutex
	current  *workhours.OfficeSettings
	draft    Draft
	year     int
	month    time.Month
	debounce time.Duration
	timer    *time.Timer
}

type Option func(*Service)

// WithDebounce overrides the edit debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

func NewService(client *api.Client, opts ...Option) *Service {
	s := &Service{
		settings: api.NewResource[workhours.OfficeSettings](client, api.Descriptor{Name: "companyDetails", NoPlural: true}),
		holidays: api.NewResource[workhours.Holiday](client, api.Descriptor{Name: "holiday"}),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the settings singleton and resets the draft from it.
func (s *Service) Load(ctx context.Context) (*workhours.OfficeSettings, error) {
	result, err := s.settings.List(ctx, api.ListQuery{Limit: api.LimitAll})
	if err != nil {
		return nil, fmt.Errorf("load office settings: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, ErrNoSettings
	}
	settings := result.Items[0]

	s.mu.Lock()
	s.current = &settings
	s.draft = Draft{
		OfficeStartTime:     settings.OfficeStartTime,
		OfficeEndTime:       settings.OfficeEndTime,
		LateThreshold:       settings.LateThreshold,
		EarlyLeaveThreshold: settings.EarlyLeaveThreshold,
		SaturdayPolicy:      settings.SaturdayPolicy,
	}
	s.mu.Unlock()
	return &settings, nil
}

// SelectMonth switches the month being edited and returns its summary,
// recomputing only when nothing usable is stored for it.
func (s *Service) SelectMonth(ctx context.Context, year int, month time.Month) (workhours.MonthData, error) {
	settings, err := s.require(ctx)
	if err != nil {
		return workhours.MonthData{}, err
	}

	s.mu.Lock()
	s.year, s.month = year, month
	s.mu.Unlock()

	if stored, ok := settings.MonthlySettings[workhours.MonthKey(year, month)]; ok && stored.Computed() {
		return stored, nil
	}
	return s.Recompute(ctx, year, month)
}

// SetOfficeHours updates the draft time window and schedules a debounced
// recomputation of the selected month.
func (s *Service) SetOfficeHours(ctx context.Context, start, end string) {
	s.mu.Lock()
	s.draft.OfficeStartTime = start
	s.draft.OfficeEndTime = end
	s.draft.WorkingHoursPerDay = 0
	s.draft.HalfDayHours = 0
	s.scheduleLocked(ctx)
	s.mu.Unlock()
}

// SetSaturdayPolicy updates the draft policy and schedules a debounced
// recomputation of the selected month.
func (s *Service) SetSaturdayPolicy(ctx context.Context, policy workhours.SaturdayPolicy) {
	s.mu.Lock()
	s.draft.SaturdayPolicy = policy
	s.scheduleLocked(ctx)
	s.mu.Unlock()
}

// SetRates overrides the derived hour rates and schedules a debounced
// recomputation of the selected month. Zero restores derivation.
func (s *Service) SetRates(ctx context.Context, perDay, halfDay float64) {
	s.mu.Lock()
	s.draft.WorkingHoursPerDay = perDay
	s.draft.HalfDayHours = halfDay
	s.scheduleLocked(ctx)
	s.mu.Unlock()
}

// scheduleLocked arms the debounce timer, superseding any pending run.
// Callers hold s.mu.
func (s *Service) scheduleLocked(ctx context.Context) {
	if s.timer != nil {
		s.timer.Stop()
	}
	year, month := s.year, s.month
	s.timer = time.AfterFunc(s.debounce, func() {
		data, err := s.Recompute(ctx, year, month)
		if s.OnRecompute != nil {
			s.OnRecompute(data, err)
		}
	})
}

// Recompute runs the calculator for the month with the current draft and
// the month's holidays, then persists the result.
func (s *Service) Recompute(ctx context.Context, year int, month time.Month) (workhours.MonthData, error) {
	settings, err := s.require(ctx)
	if err != nil {
		return workhours.MonthData{}, err
	}

	holidays, err := s.monthHolidays(ctx, year, month)
	if err != nil {
		return workhours.MonthData{}, err
	}

	s.mu.Lock()
	cfg := workhours.Config{
		OfficeStartTime:    s.draft.OfficeStartTime,
		OfficeEndTime:      s.draft.OfficeEndTime,
		SaturdayPolicy:     s.draft.SaturdayPolicy,
		WorkingHoursPerDay: s.draft.WorkingHoursPerDay,
		HalfDayHours:       s.draft.HalfDayHours,
	}
	s.mu.Unlock()

	data := workhours.Compute(year, month, cfg, holidays)
	if err := s.persistMonth(ctx, settings, year, month, data); err != nil {
		return workhours.MonthData{}, err
	}
	return data, nil
}

// Reset zeroes the month's stored summary while keeping the configured
// hour rates, then persists it.
func (s *Service) Reset(ctx context.Context, year int, month time.Month) (workhours.MonthData, error) {
	settings, err := s.require(ctx)
	if err != nil {
		return workhours.MonthData{}, err
	}

	key := workhours.MonthKey(year, month)
	data, ok := settings.MonthlySettings[key]
	if ok {
		data = data.Reset()
	} else {
		s.mu.Lock()
		cfg := workhours.Config{
			OfficeStartTime:    s.draft.OfficeStartTime,
			OfficeEndTime:      s.draft.OfficeEndTime,
			WorkingHoursPerDay: s.draft.WorkingHoursPerDay,
			HalfDayHours:       s.draft.HalfDayHours,
		}
		s.mu.Unlock()
		perDay := cfg.HoursPerDay()
		data = workhours.MonthData{
			WorkingHoursPerDay: perDay,
			HalfDayHours:       cfg.HalfDay(perDay),
		}
	}

	if err := s.persistMonth(ctx, settings, year, month, data); err != nil {
		return workhours.MonthData{}, err
	}
	return data, nil
}

// MonthData returns the stored summary for a month, false when absent.
func (s *Service) MonthData(year int, month time.Month) (workhours.MonthData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return workhours.MonthData{}, false
	}
	data, ok := s.current.MonthlySettings[workhours.MonthKey(year, month)]
	return data, ok
}

func (s *Service) require(ctx context.Context) (*workhours.OfficeSettings, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current != nil {
		return current, nil
	}
	return s.Load(ctx)
}

func (s *Service) monthHolidays(ctx context.Context, year int, month time.Month) ([]workhours.Holiday, error) {
	result, err := s.holidays.List(ctx, api.ListQuery{
		Limit:   api.LimitAll,
		Filters: map[string]string{"month": workhours.MonthKey(year, month)},
	})
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	return result.Items, nil
}

func (s *Service) persistMonth(ctx context.Context, settings *workhours.OfficeSettings, year int, month time.Month, data workhours.MonthData) error {
	s.mu.Lock()
	updated := *settings
	updated.OfficeStartTime = s.draft.OfficeStartTime
	updated.OfficeEndTime = s.draft.OfficeEndTime
	updated.LateThreshold = s.draft.LateThreshold
	updated.EarlyLeaveThreshold = s.draft.EarlyLeaveThreshold
	updated.SaturdayPolicy = s.draft.SaturdayPolicy
	updated.MonthlySettings = make(map[string]workhours.MonthData, len(settings.MonthlySettings)+1)
	for k, v := range settings.MonthlySettings {
		updated.MonthlySettings[k] = v
	}
	updated.MonthlySettings[workhours.MonthKey(year, month)] = data
	s.mu.Unlock()

	saved, err := s.settings.Update(ctx, updated.ID, updated)
	if err != nil {
		return fmt.Errorf("persist office settings: %w", err)
	}

	s.mu.Lock()
	s.current = saved
	s.mu.Unlock()
	return nil
}
