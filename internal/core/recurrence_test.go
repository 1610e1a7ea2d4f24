package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDates(t *testing.T, got []time.Time, want ...time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestOccurrencesDaily(t *testing.T) {
	rule := RecurrenceRule{Frequency: Daily, Interval: 2}
	start := date(2025, time.March, 1)
	got := rule.Occurrences(start, time.Time{}, date(2025, time.March, 7))
	assertDates(t, got,
		date(2025, time.March, 1),
		date(2025, time.March, 3),
		date(2025, time.March, 5),
		date(2025, time.March, 7),
	)
}

func TestOccurrencesWeeklyWithWeekdays(t *testing.T) {
	// Start on a Wednesday; Mon and Fri selected. The first eligible
	// occurrence is the Friday of the start week.
	rule := RecurrenceRule{
		Frequency: Weekly,
		Weekdays:  []time.Weekday{time.Friday, time.Monday},
	}
	start := date(2025, time.June, 4) // Wednesday
	got := rule.Occurrences(start, time.Time{}, date(2025, time.June, 16))
	assertDates(t, got,
		date(2025, time.June, 6),  // Fri
		date(2025, time.June, 9),  // Mon
		date(2025, time.June, 13), // Fri
		date(2025, time.June, 16), // Mon
	)
}

func TestOccurrencesMonthlyClampsShortMonths(t *testing.T) {
	rule := RecurrenceRule{Frequency: Monthly}
	start := date(2025, time.January, 31)
	got := rule.Occurrences(start, time.Time{}, date(2025, time.April, 30))
	assertDates(t, got,
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.March, 31),
		date(2025, time.April, 30),
	)
}

func TestOccurrencesMonthlyNthWeekday(t *testing.T) {
	// First Monday of each month.
	rule := RecurrenceRule{
		Frequency:    Monthly,
		MonthWeek:    1,
		MonthWeekday: time.Monday,
	}
	start := date(2025, time.June, 1)
	got := rule.Occurrences(start, time.Time{}, date(2025, time.August, 31))
	assertDates(t, got,
		date(2025, time.June, 2),
		date(2025, time.July, 7),
		date(2025, time.August, 4),
	)
}

func TestOccurrencesYearlyLeapDay(t *testing.T) {
	rule := RecurrenceRule{Frequency: Yearly}
	start := date(2024, time.February, 29)
	got := rule.Occurrences(start, time.Time{}, date(2028, time.December, 31))
	assertDates(t, got,
		date(2024, time.February, 29),
		date(2025, time.February, 28),
		date(2026, time.February, 28),
		date(2027, time.February, 28),
		date(2028, time.February, 29),
	)
}

func TestOccurrencesEndAfterCount(t *testing.T) {
	rule := RecurrenceRule{Frequency: Daily, End: EndAfterCount, MaxCount: 3}
	start := date(2025, time.May, 1)
	got := rule.Occurrences(start, time.Time{}, date(2025, time.May, 31))
	assertDates(t, got,
		date(2025, time.May, 1),
		date(2025, time.May, 2),
		date(2025, time.May, 3),
	)

	// Advancing the cursor never resets the budget: only the third
	// occurrence remains after the second.
	got = rule.Occurrences(start, date(2025, time.May, 2), date(2025, time.May, 31))
	assertDates(t, got, date(2025, time.May, 3))
}

func TestOccurrencesEndOnDate(t *testing.T) {
	rule := RecurrenceRule{Frequency: Weekly, End: EndOnDate, EndDate: date(2025, time.July, 15)}
	start := date(2025, time.July, 1)
	got := rule.Occurrences(start, time.Time{}, date(2025, time.December, 31))
	assertDates(t, got,
		date(2025, time.July, 1),
		date(2025, time.July, 8),
		date(2025, time.July, 15),
	)
}

func TestNextAfter(t *testing.T) {
	rule := RecurrenceRule{Frequency: Monthly, End: EndAfterCount, MaxCount: 2}
	start := date(2025, time.January, 15)

	next, ok := rule.NextAfter(start, time.Time{})
	if !ok || !next.Equal(date(2025, time.January, 15)) {
		t.Fatalf("expected first occurrence, got %s ok=%v", next, ok)
	}
	next, ok = rule.NextAfter(start, date(2025, time.January, 15))
	if !ok || !next.Equal(date(2025, time.February, 15)) {
		t.Fatalf("expected second occurrence, got %s ok=%v", next, ok)
	}
	if _, ok = rule.NextAfter(start, date(2025, time.February, 15)); ok {
		t.Fatal("expected exhaustion after two occurrences")
	}
}

func TestRuleValidate(t *testing.T) {
	cases := []struct {
		name string
		rule RecurrenceRule
		ok   bool
	}{
		{"plain daily", RecurrenceRule{Frequency: Daily}, true},
		{"bad frequency", RecurrenceRule{Frequency: "hourly"}, false},
		{"negative interval", RecurrenceRule{Frequency: Daily, Interval: -1}, false},
		{"end date missing", RecurrenceRule{Frequency: Daily, End: EndOnDate}, false},
		{"count missing", RecurrenceRule{Frequency: Daily, End: EndAfterCount}, false},
		{"month week out of range", RecurrenceRule{Frequency: Monthly, MonthWeek: 6}, false},
		{"month day out of range", RecurrenceRule{Frequency: Monthly, MonthDay: 32}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRecurringDueAndSkip(t *testing.T) {
	rt, err := NewRecurring(Expense, Money{Cents: 1500}, "Rent", "", "Main",
		RecurrenceRule{Frequency: Monthly}, date(2025, time.January, 1))
	if err != nil {
		t.Fatalf("NewRecurring: %v", err)
	}

	due := rt.Due(date(2025, time.March, 15))
	assertDates(t, due,
		date(2025, time.January, 1),
		date(2025, time.February, 1),
		date(2025, time.March, 1),
	)

	rt.SkipDate(date(2025, time.February, 1))
	if !rt.Skipped(date(2025, time.February, 1)) {
		t.Fatal("expected February occurrence to be marked skipped")
	}
	if rt.Skipped(date(2025, time.January, 1)) {
		t.Fatal("January occurrence should not be skipped")
	}
}

func TestRecurringSpawnCarriesTemplate(t *testing.T) {
	rt, err := NewRecurring(Income, Money{Cents: 250000}, "Salary", "monthly pay", "Main",
		RecurrenceRule{Frequency: Monthly}, date(2025, time.January, 25))
	if err != nil {
		t.Fatalf("NewRecurring: %v", err)
	}
	tx := rt.Spawn(date(2025, time.February, 25))
	if tx.Type != Income || tx.Amount.Cents != 250000 || tx.Category != "Salary" {
		t.Fatalf("spawned transaction does not match template: %+v", tx)
	}
	if tx.RecurrenceID != rt.ID {
		t.Fatalf("expected recurrence id %q, got %q", rt.ID, tx.RecurrenceID)
	}
	if !tx.Date.Equal(date(2025, time.February, 25)) {
		t.Fatalf("expected occurrence date, got %s", tx.Date)
	}
}

func TestRecurringStatus(t *testing.T) {
	start := date(2025, time.January, 1)
	rt, err := NewRecurring(Expense, Money{Cents: 100}, "Sub", "", "Main",
		RecurrenceRule{Frequency: Monthly, End: EndAfterCount, MaxCount: 2}, start)
	if err != nil {
		t.Fatalf("NewRecurring: %v", err)
	}

	if got := rt.Status(date(2024, time.December, 1)); got != StatusScheduled {
		t.Fatalf("before start: expected scheduled, got %s", got)
	}
	if got := rt.Status(date(2025, time.January, 15)); got != StatusPending {
		t.Fatalf("occurrence due: expected pending, got %s", got)
	}
	rt.LastMaterialized = date(2025, time.February, 1)
	if got := rt.Status(date(2025, time.February, 2)); got != StatusExhausted {
		t.Fatalf("after max count: expected exhausted, got %s", got)
	}
	rt.Active = false
	if got := rt.Status(date(2025, time.February, 2)); got != StatusPaused {
		t.Fatalf("inactive: expected paused, got %s", got)
	}
}
