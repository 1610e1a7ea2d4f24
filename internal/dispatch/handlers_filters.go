package dispatch

import (
	"fmt"

	"portafoglio/internal/core"
	"portafoglio/internal/strategy"
)

// buildFilter maps a filter request onto a strategy variant. Unknown kinds
// fail with ErrUnknownStrategy; parameter problems with ErrInvalidRequest.
func buildFilter(p Params) (strategy.Filter, error) {
	raw, err := p.String("kind")
	if err != nil {
		return strategy.Filter{}, err
	}
	f := strategy.Filter{Kind: strategy.FilterKind(raw)}
	switch f.Kind {
	case strategy.FilterByType:
		ttRaw, err := p.String("type")
		if err != nil {
			return strategy.Filter{}, err
		}
		f.Type, err = core.ParseTxType(ttRaw)
		if err != nil {
			return strategy.Filter{}, err
		}
		f.IncludeTransfers, err = p.OptBool("include_transfers", false)
		if err != nil {
			return strategy.Filter{}, err
		}
	case strategy.FilterCategory:
		f.Categories, err = p.StringSlice("categories")
		if err != nil {
			return strategy.Filter{}, err
		}
		f.Exclude, err = p.OptBool("exclude", false)
		if err != nil {
			return strategy.Filter{}, err
		}
	case strategy.FilterDateRange:
		if from, ok, err := p.OptDate("from"); err != nil {
			return strategy.Filter{}, err
		} else if ok {
			f.From = from
		}
		if to, ok, err := p.OptDate("to"); err != nil {
			return strategy.Filter{}, err
		} else if ok {
			f.To = to
		}
	case strategy.FilterAmountRange:
		if minAmount, ok, err := p.OptAmount("min"); err != nil {
			return strategy.Filter{}, err
		} else if ok {
			f.MinCents = minAmount.Cents
		}
		if maxAmount, ok, err := p.OptAmount("max"); err != nil {
			return strategy.Filter{}, err
		} else if ok {
			f.MaxCents = maxAmount.Cents
		}
	case strategy.FilterNoteContains:
		f.Search, err = p.String("search")
		if err != nil {
			return strategy.Filter{}, err
		}
	case strategy.FilterTransfersOnly, strategy.FilterNoTransfers:
	default:
		return strategy.Filter{}, fmt.Errorf("%w: filter kind %q", core.ErrUnknownStrategy, raw)
	}
	return f, nil
}

func (d *Dispatcher) addFilter(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	f, err := buildFilter(p)
	if err != nil {
		return "", nil, err
	}
	if err := w.Filters.Add(f); err != nil {
		return "", nil, err
	}
	data := map[string]any{
		"filter": filterMap(f, w.Filters.Len()-1),
		"active": w.Filters.Len(),
	}
	return "Filter added: " + f.Name(), data, nil
}

func (d *Dispatcher) removeFilter(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	index, err := p.Int("filter_index")
	if err != nil {
		return "", nil, err
	}
	active := w.Filters.Active()
	if err := w.Filters.Remove(index); err != nil {
		return "", nil, err
	}
	return "Filter removed: " + active[index].Name(),
		map[string]any{"active": w.Filters.Len()}, nil
}

func (d *Dispatcher) clearFilters(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	cleared := w.Filters.Len()
	w.Filters.Clear()
	return fmt.Sprintf("Cleared %d filter(s)", cleared), map[string]any{"cleared": cleared}, nil
}

func (d *Dispatcher) getActiveFilters(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	active := w.Filters.Active()
	list := make([]map[string]any, len(active))
	for i, f := range active {
		list[i] = filterMap(f, i)
	}
	data := map[string]any{
		"filters": list,
		"summary": w.Filters.Summary(),
	}
	return fmt.Sprintf("%d active filter(s)", len(active)), data, nil
}

func (d *Dispatcher) getSortingOptions(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	data := map[string]any{
		"kinds": []string{
			string(strategy.SortByDate),
			string(strategy.SortByAmount),
			string(strategy.SortByCategory),
		},
		"current": w.Sort.Name(),
	}
	return "Sorting options", data, nil
}

func (d *Dispatcher) setSorting(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	raw, err := p.String("kind")
	if err != nil {
		return "", nil, err
	}
	kind, err := strategy.ParseSortKind(raw)
	if err != nil {
		return "", nil, err
	}
	ascending, err := p.OptBool("ascending", false)
	if err != nil {
		return "", nil, err
	}
	w.Sort = strategy.TransactionSort{Kind: kind, Ascending: ascending}
	return "Sorting set to " + w.Sort.Name(), map[string]any{"sorting": w.Sort.Name()}, nil
}
