package dispatch

import (
	"sort"

	"portafoglio/internal/core"
	"portafoglio/internal/wallet"
)

// getDashboard returns the active wallet's full snapshot. Recurring
// templates are processed first so the view always reflects everything
// due as of now. Balance and totals come from the unfiltered ledger; the
// transaction list and the per-category breakdowns honor the active
// filters.
func (d *Dispatcher) getDashboard(p Params) (string, map[string]any, error) {
	now := d.Now()
	generated := d.manager.Scheduler().Process(now)

	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	view := w.FilteredSorted()
	income, expense := wallet.Breakdown(view)

	data := map[string]any{
		"wallet":            walletMap(w),
		"transactions":      txList(w, view),
		"shown":             len(view),
		"total":             w.Len(),
		"income_breakdown":  moneyMap(income),
		"expense_breakdown": moneyMap(expense),
		"active_filters":    w.Filters.Summary(),
		"sorting":           w.Sort.Name(),
		"generated":         generated,
	}
	if w.Filters.Len() > 0 {
		var fi, fe int64
		for _, t := range view {
			if t.Type == core.Income {
				fi += t.Amount.Cents
			} else {
				fe += t.Amount.Cents
			}
		}
		data["filtered_income"] = core.Money{Cents: fi}.Float64()
		data["filtered_expense"] = core.Money{Cents: fe}.Float64()
	}
	return "Dashboard for wallet " + w.Name, data, nil
}

// getPercentages reports each category's share of its type total over the
// active wallet's filtered view.
func (d *Dispatcher) getPercentages(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	income, expense := wallet.Breakdown(w.FilteredSorted())
	data := map[string]any{
		"income_percentages":  percentageMap(wallet.Percentages(income)),
		"expense_percentages": percentageMap(wallet.Percentages(expense)),
	}
	return "Category percentages for wallet " + w.Name, data, nil
}

// processRecurring materializes everything currently due and reports the
// count, for transports that want to trigger the scheduler explicitly.
func (d *Dispatcher) processRecurring(p Params) (string, map[string]any, error) {
	generated := d.manager.Scheduler().Process(d.Now())
	return "Recurring transactions processed", map[string]any{"generated": generated}, nil
}

// getHelp lists the action catalog with descriptions and required
// parameters.
func (d *Dispatcher) getHelp(p Params) (string, map[string]any, error) {
	names := make([]string, 0, len(d.routes))
	for name := range d.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	actions := make([]map[string]any, len(names))
	for i, name := range names {
		r := d.routes[name]
		required := r.required
		if required == nil {
			required = []string{}
		}
		actions[i] = map[string]any{
			"action":      name,
			"description": r.desc,
			"required":    required,
		}
	}
	return "Supported actions", map[string]any{"actions": actions}, nil
}
