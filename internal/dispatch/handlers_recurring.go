package dispatch

import (
	"fmt"
	"strings"
	"time"

	"portafoglio/internal/core"
)

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

func parseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: weekday %q", core.ErrInvalidRequest, s)
	}
	return wd, nil
}

// buildRule decodes the nested rule object of a recurring request.
func buildRule(p Params) (core.RecurrenceRule, error) {
	sub, err := p.Sub("rule")
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	freqRaw, err := sub.String("frequency")
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	var rule core.RecurrenceRule
	rule.Frequency, err = core.ParseFrequency(freqRaw)
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	rule.Interval, err = sub.OptInt("interval", 1)
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	if sub.Has("weekdays") {
		names, err := sub.StringSlice("weekdays")
		if err != nil {
			return core.RecurrenceRule{}, err
		}
		for _, name := range names {
			wd, err := parseWeekday(name)
			if err != nil {
				return core.RecurrenceRule{}, err
			}
			rule.Weekdays = append(rule.Weekdays, wd)
		}
	}
	rule.MonthDay, err = sub.OptInt("month_day", 0)
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	rule.MonthWeek, err = sub.OptInt("month_week", 0)
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	if rule.MonthWeek > 0 {
		wdRaw, err := sub.String("month_weekday")
		if err != nil {
			return core.RecurrenceRule{}, err
		}
		rule.MonthWeekday, err = parseWeekday(wdRaw)
		if err != nil {
			return core.RecurrenceRule{}, err
		}
	}
	rule.End = core.EndCondition(sub.OptString("end_condition", string(core.EndNever)))
	switch rule.End {
	case core.EndNever:
	case core.EndOnDate:
		rule.EndDate, err = sub.Date("end_date")
		if err != nil {
			return core.RecurrenceRule{}, err
		}
	case core.EndAfterCount:
		rule.MaxCount, err = sub.Int("max_occurrences")
		if err != nil {
			return core.RecurrenceRule{}, err
		}
	default:
		return core.RecurrenceRule{}, fmt.Errorf("%w: end condition %q", core.ErrInvalidRequest, rule.End)
	}
	if err := rule.Validate(); err != nil {
		return core.RecurrenceRule{}, err
	}
	return rule, nil
}

// addRecurring registers a template and immediately materializes whatever
// is already due, so a rule starting today produces its first transaction
// in the same call.
func (d *Dispatcher) addRecurring(p Params) (string, map[string]any, error) {
	walletName := p.OptString("wallet", "")
	if walletName == "" {
		w, err := d.active()
		if err != nil {
			return "", nil, err
		}
		walletName = w.Name
	} else if _, err := d.manager.Wallet(walletName); err != nil {
		return "", nil, err
	}
	ttRaw, err := p.String("type")
	if err != nil {
		return "", nil, err
	}
	tt, err := core.ParseTxType(ttRaw)
	if err != nil {
		return "", nil, err
	}
	amount, err := p.Amount("amount")
	if err != nil {
		return "", nil, err
	}
	category, err := p.String("category")
	if err != nil {
		return "", nil, err
	}
	if category == core.ReservedCategory {
		return "", nil, core.ErrReservedCategory
	}
	rule, err := buildRule(p)
	if err != nil {
		return "", nil, err
	}
	now := d.Now()
	start := now
	if sd, ok, err := p.OptDate("start_date"); err != nil {
		return "", nil, err
	} else if ok {
		start = sd
	}
	rt, err := core.NewRecurring(tt, amount, category, p.OptString("note", ""), walletName, rule, start)
	if err != nil {
		return "", nil, err
	}
	d.manager.Scheduler().Add(rt)
	generated := d.manager.Scheduler().Process(now)

	msg := fmt.Sprintf("Recurring %s created: %s", tt, rule.Describe())
	data := map[string]any{
		"recurring": recurringMap(rt, now),
		"generated": generated,
	}
	return msg, data, nil
}

func (d *Dispatcher) getRecurringList(p Params) (string, map[string]any, error) {
	now := d.Now()
	templates := d.manager.Scheduler().Templates()
	list := make([]map[string]any, len(templates))
	for i, rt := range templates {
		m := recurringMap(rt, now)
		m["index"] = i
		list[i] = m
	}
	return fmt.Sprintf("%d recurring transaction(s)", len(list)),
		map[string]any{"recurring": list}, nil
}

func (d *Dispatcher) getRecurringDetail(p Params) (string, map[string]any, error) {
	index, err := p.Int("index")
	if err != nil {
		return "", nil, err
	}
	rt, err := d.manager.Scheduler().ByIndex(index)
	if err != nil {
		return "", nil, err
	}
	now := d.Now()
	m := recurringMap(rt, now)
	m["index"] = index
	if next, ok := rt.Rule.NextAfter(rt.StartDate, rt.LastMaterialized); ok {
		m["next_occurrence"] = next.Format("2006-01-02")
	}
	return "Recurring transaction details", map[string]any{"recurring": m}, nil
}

// editRecurring applies one of three edit actions to a template:
// edit_template updates its fields, skip_date marks one occurrence to be
// passed over, toggle_active pauses or resumes materialization.
func (d *Dispatcher) editRecurring(p Params) (string, map[string]any, error) {
	index, err := p.Int("index")
	if err != nil {
		return "", nil, err
	}
	rt, err := d.manager.Scheduler().ByIndex(index)
	if err != nil {
		return "", nil, err
	}
	action, err := p.String("edit_action")
	if err != nil {
		return "", nil, err
	}
	now := d.Now()
	switch action {
	case "edit_template":
		changed := false
		if amount, ok, err := p.OptAmount("amount"); err != nil {
			return "", nil, err
		} else if ok {
			rt.Amount = amount
			changed = true
		}
		if p.Has("category") {
			category, err := p.String("category")
			if err != nil {
				return "", nil, err
			}
			if category == core.ReservedCategory {
				return "", nil, core.ErrReservedCategory
			}
			rt.Category = category
			changed = true
		}
		if p.Has("note") {
			rt.Note = p.OptString("note", "")
			changed = true
		}
		if !changed {
			return "", nil, fmt.Errorf("%w: nothing to edit", core.ErrInvalidRequest)
		}
		return "Recurring transaction updated", map[string]any{"recurring": recurringMap(rt, now)}, nil
	case "skip_date":
		date, err := p.Date("date")
		if err != nil {
			return "", nil, err
		}
		rt.SkipDate(date)
		return "Occurrence on " + date.Format("2006-01-02") + " will be skipped",
			map[string]any{"recurring": recurringMap(rt, now)}, nil
	case "toggle_active":
		rt.Active = !rt.Active
		state := "resumed"
		if !rt.Active {
			state = "paused"
		}
		return "Recurring transaction " + state,
			map[string]any{"recurring": recurringMap(rt, now)}, nil
	}
	return "", nil, fmt.Errorf("%w: edit action %q", core.ErrInvalidRequest, action)
}

func (d *Dispatcher) deleteRecurring(p Params) (string, map[string]any, error) {
	index, err := p.Int("index")
	if err != nil {
		return "", nil, err
	}
	rt, err := d.manager.Scheduler().ByIndex(index)
	if err != nil {
		return "", nil, err
	}
	if err := d.manager.Scheduler().Remove(index); err != nil {
		return "", nil, err
	}
	msg := fmt.Sprintf("Recurring transaction deleted (%s)", rt.Rule.Describe())
	return msg, map[string]any{"remaining": len(d.manager.Scheduler().Templates())}, nil
}
