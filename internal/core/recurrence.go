package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Frequency enumerates the supported recurrence cadences.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// ParseFrequency validates a frequency name from a transport.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", fmt.Errorf("%w: frequency %q", ErrInvalidRequest, s)
}

// EndCondition describes how a recurrence stops producing occurrences.
type EndCondition string

const (
	EndNever      EndCondition = "never"
	EndOnDate     EndCondition = "on_date"
	EndAfterCount EndCondition = "after_count"
)

// RecurrenceRule describes when a recurring template spawns transactions.
//
// Weekly rules may carry a weekday set; with an empty set occurrences step
// Interval weeks from the start date. Monthly rules either repeat on a
// fixed day of month (clamped to short months) or on the MonthWeek-th
// MonthWeekday of the month. Yearly rules repeat on the start's month and
// day, with Feb 29 clamping in non-leap years.
type RecurrenceRule struct {
	Frequency    Frequency
	Interval     int
	Weekdays     []time.Weekday // weekly only; empty means plain week stepping
	MonthDay     int            // monthly; 0 derives the day from the start date
	MonthWeek    int            // monthly nth-weekday pattern; 0 disables
	MonthWeekday time.Weekday   // meaningful when MonthWeek > 0
	End          EndCondition
	EndDate      time.Time // when End == EndOnDate
	MaxCount     int       // when End == EndAfterCount
}

// Validate checks the rule's internal consistency.
func (r RecurrenceRule) Validate() error {
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return fmt.Errorf("%w: frequency %q", ErrInvalidRequest, r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidRequest)
	}
	if r.MonthWeek < 0 || r.MonthWeek > 5 {
		return fmt.Errorf("%w: month week must be between 1 and 5", ErrInvalidRequest)
	}
	if r.MonthDay < 0 || r.MonthDay > 31 {
		return fmt.Errorf("%w: day of month must be between 1 and 31", ErrInvalidRequest)
	}
	switch r.End {
	case EndNever, "":
	case EndOnDate:
		if r.EndDate.IsZero() {
			return fmt.Errorf("%w: end date required", ErrInvalidRequest)
		}
	case EndAfterCount:
		if r.MaxCount < 1 {
			return fmt.Errorf("%w: max occurrences must be positive", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: end condition %q", ErrInvalidRequest, r.End)
	}
	return nil
}

func (r RecurrenceRule) interval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// mondayIndex maps time.Weekday (Sunday=0) onto a Monday-first week.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// nthWeekdayOfMonth returns the day of month of the week-th weekday, or
// false when the month has no such occurrence (e.g. no 5th Friday).
func nthWeekdayOfMonth(year int, month time.Month, week int, weekday time.Weekday) (int, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	day := 1 + (int(weekday)-int(first)+7)%7 + (week-1)*7
	if day > daysInMonth(year, month) {
		return 0, false
	}
	return day, true
}

func stepMonths(year int, month time.Month, steps int) (int, time.Month) {
	m := int(month) + steps
	for m > 12 {
		m -= 12
		year++
	}
	return year, time.Month(m)
}

// at rebuilds a candidate on the start date's clock time and location so
// occurrence ordering stays stable across the whole series.
func at(start time.Time, year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, start.Hour(), start.Minute(), start.Second(), 0, start.Location())
}

// scan yields successive occurrence dates from start in chronological
// order, without applying end conditions; yield returns false to stop.
func (r RecurrenceRule) scan(start time.Time, yield func(time.Time) bool) {
	iv := r.interval()
	switch r.Frequency {
	case Daily:
		for cur := start; ; cur = cur.AddDate(0, 0, iv) {
			if !yield(cur) {
				return
			}
		}
	case Weekly:
		if len(r.Weekdays) == 0 {
			for cur := start; ; cur = cur.AddDate(0, 0, 7*iv) {
				if !yield(cur) {
					return
				}
			}
		}
		wds := append([]time.Weekday(nil), r.Weekdays...)
		sort.Slice(wds, func(i, j int) bool { return mondayIndex(wds[i]) < mondayIndex(wds[j]) })
		weekStart := start.AddDate(0, 0, -mondayIndex(start.Weekday()))
		for week := 0; ; week++ {
			ws := weekStart.AddDate(0, 0, 7*iv*week)
			for _, wd := range wds {
				cand := ws.AddDate(0, 0, mondayIndex(wd))
				if cand.Before(start) {
					continue
				}
				if !yield(cand) {
					return
				}
			}
		}
	case Monthly:
		year, month := start.Year(), start.Month()
		if r.MonthWeek > 0 {
			for {
				if day, ok := nthWeekdayOfMonth(year, month, r.MonthWeek, r.MonthWeekday); ok {
					cand := at(start, year, month, day)
					if !cand.Before(start) && !yield(cand) {
						return
					}
				}
				year, month = stepMonths(year, month, iv)
			}
		}
		target := r.MonthDay
		if target == 0 {
			target = start.Day()
		}
		for {
			day := target
			if last := daysInMonth(year, month); day > last {
				day = last
			}
			cand := at(start, year, month, day)
			if !cand.Before(start) && !yield(cand) {
				return
			}
			year, month = stepMonths(year, month, iv)
		}
	case Yearly:
		for year := start.Year(); ; year += iv {
			day := start.Day()
			if last := daysInMonth(year, start.Month()); day > last {
				day = last
			}
			cand := at(start, year, start.Month(), day)
			if !cand.Before(start) && !yield(cand) {
				return
			}
		}
	}
}

// ended reports whether the occurrence at the given position breaches the
// rule's end condition. count is the number of occurrences already seen
// since the rule start.
func (r RecurrenceRule) ended(d time.Time, count int) bool {
	if r.End == EndOnDate && !r.EndDate.IsZero() && d.After(r.EndDate) {
		return true
	}
	if r.End == EndAfterCount && r.MaxCount > 0 && count >= r.MaxCount {
		return true
	}
	return false
}

// Occurrences returns every occurrence date d with after < d <= until, in
// chronological order, honoring the end condition. The occurrence count
// used for after_count rules is always measured from the rule start, so a
// caller advancing `after` never resets the budget.
func (r RecurrenceRule) Occurrences(start, after, until time.Time) []time.Time {
	var out []time.Time
	count := 0
	r.scan(start, func(d time.Time) bool {
		if d.After(until) || r.ended(d, count) {
			return false
		}
		if d.After(after) {
			out = append(out, d)
		}
		count++
		return true
	})
	return out
}

// NextAfter returns the first occurrence strictly after the given moment,
// or false when the rule is exhausted before producing one.
func (r RecurrenceRule) NextAfter(start, after time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	count := 0
	r.scan(start, func(d time.Time) bool {
		if r.ended(d, count) {
			return false
		}
		count++
		if d.After(after) {
			next, found = d, true
			return false
		}
		return true
	})
	return next, found
}

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

// Describe renders a human-readable summary such as
// "Every 2 weeks on Mon, Fri until 2025-12-31".
func (r RecurrenceRule) Describe() string {
	iv := r.interval()
	var parts []string
	switch r.Frequency {
	case Daily:
		if iv == 1 {
			parts = append(parts, "Daily")
		} else {
			parts = append(parts, fmt.Sprintf("Every %d days", iv))
		}
	case Weekly:
		if iv == 1 {
			parts = append(parts, "Weekly")
		} else {
			parts = append(parts, fmt.Sprintf("Every %d weeks", iv))
		}
		if len(r.Weekdays) > 0 {
			wds := append([]time.Weekday(nil), r.Weekdays...)
			sort.Slice(wds, func(i, j int) bool { return mondayIndex(wds[i]) < mondayIndex(wds[j]) })
			names := make([]string, len(wds))
			for i, wd := range wds {
				names[i] = weekdayShort[wd]
			}
			parts = append(parts, "on "+strings.Join(names, ", "))
		}
	case Monthly:
		if iv == 1 {
			parts = append(parts, "Monthly")
		} else {
			parts = append(parts, fmt.Sprintf("Every %d months", iv))
		}
		if r.MonthWeek > 0 {
			ordinals := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 5: "5th"}
			parts = append(parts, fmt.Sprintf("on the %s %s", ordinals[r.MonthWeek], weekdayShort[r.MonthWeekday]))
		} else if r.MonthDay > 0 {
			parts = append(parts, fmt.Sprintf("on day %d", r.MonthDay))
		}
	case Yearly:
		if iv == 1 {
			parts = append(parts, "Yearly")
		} else {
			parts = append(parts, fmt.Sprintf("Every %d years", iv))
		}
	}
	switch r.End {
	case EndOnDate:
		parts = append(parts, "until "+r.EndDate.Format("2006-01-02"))
	case EndAfterCount:
		parts = append(parts, fmt.Sprintf("for %d occurrences", r.MaxCount))
	}
	return strings.Join(parts, " ")
}

// RecStatus is the lifecycle state of a recurring template.
type RecStatus string

const (
	StatusPending   RecStatus = "pending"   // next occurrence due, not yet materialized
	StatusScheduled RecStatus = "scheduled" // next occurrence lies in the future
	StatusExhausted RecStatus = "exhausted" // end condition passed, nothing further
	StatusPaused    RecStatus = "paused"    // deactivated by the user
)

// RecurringTransaction is a template that periodically spawns concrete
// transactions into its target wallet.
type RecurringTransaction struct {
	ID               string
	Type             TxType
	Amount           Money
	Category         string
	Note             string
	WalletName       string
	Rule             RecurrenceRule
	StartDate        time.Time
	Active           bool
	GeneratedCount   int
	LastMaterialized time.Time

	skips map[time.Time]struct{}
}

// NewRecurring builds a validated recurring template targeting a wallet.
func NewRecurring(tt TxType, amount Money, category, note, walletName string, rule RecurrenceRule, start time.Time) (*RecurringTransaction, error) {
	if tt != Income && tt != Expense {
		return nil, fmt.Errorf("%w: transaction type %q", ErrInvalidRequest, tt)
	}
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: category must not be empty", ErrInvalidRequest)
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &RecurringTransaction{
		ID:         "rec-" + NewID(),
		Type:       tt,
		Amount:     amount,
		Category:   category,
		Note:       note,
		WalletName: walletName,
		Rule:       rule,
		StartDate:  start,
		Active:     true,
	}, nil
}

// Due lists every occurrence strictly after LastMaterialized and not after
// now, oldest first. A zero LastMaterialized includes the start date.
func (r *RecurringTransaction) Due(now time.Time) []time.Time {
	return r.Rule.Occurrences(r.StartDate, r.LastMaterialized, now)
}

// Spawn stamps out a concrete transaction dated at the given occurrence.
func (r *RecurringTransaction) Spawn(date time.Time) *Transaction {
	return &Transaction{
		ID:           NewID(),
		Type:         r.Type,
		Amount:       r.Amount,
		Category:     r.Category,
		Date:         date,
		Note:         r.Note,
		RecurrenceID: r.ID,
	}
}

// SkipDate marks an occurrence date to be passed over when materializing.
func (r *RecurringTransaction) SkipDate(d time.Time) {
	if r.skips == nil {
		r.skips = make(map[time.Time]struct{})
	}
	r.skips[DateOnly(d)] = struct{}{}
}

// Skipped reports whether the given occurrence date was marked skipped.
func (r *RecurringTransaction) Skipped(d time.Time) bool {
	_, ok := r.skips[DateOnly(d)]
	return ok
}

// SkippedDates returns the skip set in chronological order.
func (r *RecurringTransaction) SkippedDates() []time.Time {
	out := make([]time.Time, 0, len(r.skips))
	for d := range r.skips {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Status reports the template's lifecycle state as of now.
func (r *RecurringTransaction) Status(now time.Time) RecStatus {
	if !r.Active {
		return StatusPaused
	}
	next, ok := r.Rule.NextAfter(r.StartDate, r.LastMaterialized)
	if !ok {
		return StatusExhausted
	}
	if !next.After(now) {
		return StatusPending
	}
	return StatusScheduled
}
