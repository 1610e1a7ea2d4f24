// Package strategy implements the filtering and sorting behavior applied
// to transaction and wallet views. Kinds form a closed set; each variant
// carries its own parameters and is evaluated through a single Matches
// method, so transports select behavior purely by name.
package strategy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"portafoglio/internal/core"
)

// FilterKind names a transaction filter variant.
type FilterKind string

const (
	FilterByType        FilterKind = "by_type"
	FilterCategory      FilterKind = "category"
	FilterDateRange     FilterKind = "date_range"
	FilterAmountRange   FilterKind = "amount_range"
	FilterNoteContains  FilterKind = "note_contains"
	FilterTransfersOnly FilterKind = "transfers_only"
	FilterNoTransfers   FilterKind = "no_transfers"
)

// Filter is one predicate over transactions. Only the fields relevant to
// its Kind are consulted.
type Filter struct {
	Kind FilterKind

	// by_type
	Type             core.TxType
	IncludeTransfers bool

	// category
	Categories []string
	Exclude    bool

	// date_range; zero values leave the bound open
	From time.Time
	To   time.Time

	// amount_range, in cents; zero MaxCents leaves the bound open
	MinCents int64
	MaxCents int64

	// note_contains
	Search string
}

// Validate rejects unknown kinds and nonsensical parameters.
func (f Filter) Validate() error {
	switch f.Kind {
	case FilterByType:
		if f.Type != core.Income && f.Type != core.Expense {
			return fmt.Errorf("%w: filter type %q", core.ErrInvalidRequest, f.Type)
		}
	case FilterCategory:
		if len(f.Categories) == 0 {
			return fmt.Errorf("%w: category filter needs at least one category", core.ErrInvalidRequest)
		}
	case FilterDateRange:
		if f.From.IsZero() && f.To.IsZero() {
			return fmt.Errorf("%w: date range filter needs a bound", core.ErrInvalidRequest)
		}
	case FilterAmountRange:
		if f.MinCents == 0 && f.MaxCents == 0 {
			return fmt.Errorf("%w: amount range filter needs a bound", core.ErrInvalidRequest)
		}
		if f.MaxCents > 0 && f.MinCents > f.MaxCents {
			return fmt.Errorf("%w: amount range bounds are inverted", core.ErrInvalidRequest)
		}
	case FilterNoteContains:
		if strings.TrimSpace(f.Search) == "" {
			return fmt.Errorf("%w: note filter needs a search term", core.ErrInvalidRequest)
		}
	case FilterTransfersOnly, FilterNoTransfers:
	default:
		return fmt.Errorf("%w: filter kind %q", core.ErrUnknownStrategy, f.Kind)
	}
	return nil
}

// Matches reports whether the transaction passes this filter.
func (f Filter) Matches(t *core.Transaction) bool {
	switch f.Kind {
	case FilterByType:
		if !f.IncludeTransfers && t.IsTransfer() {
			return false
		}
		return t.Type == f.Type
	case FilterCategory:
		found := false
		for _, c := range f.Categories {
			if strings.EqualFold(c, t.Category) {
				found = true
				break
			}
		}
		if f.Exclude {
			return !found
		}
		return found
	case FilterDateRange:
		if !f.From.IsZero() && t.Date.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && t.Date.After(f.To) {
			return false
		}
		return true
	case FilterAmountRange:
		c := t.Amount.Cents
		if f.MinCents > 0 && c < f.MinCents {
			return false
		}
		if f.MaxCents > 0 && c > f.MaxCents {
			return false
		}
		return true
	case FilterNoteContains:
		return strings.Contains(strings.ToLower(t.Note), strings.ToLower(f.Search))
	case FilterTransfersOnly:
		return t.IsTransfer()
	case FilterNoTransfers:
		return !t.IsTransfer()
	}
	return false
}

// Name returns a short label for listings.
func (f Filter) Name() string {
	switch f.Kind {
	case FilterByType:
		if f.Type == core.Income {
			return "Income Only"
		}
		return "Expense Only"
	case FilterCategory:
		return "Category"
	case FilterDateRange:
		return "Date Range"
	case FilterAmountRange:
		return "Amount Range"
	case FilterNoteContains:
		return "Note"
	case FilterTransfersOnly:
		return "Transfers Only"
	case FilterNoTransfers:
		return "No Transfers"
	}
	return string(f.Kind)
}

// Description summarizes the configured parameters.
func (f Filter) Description() string {
	switch f.Kind {
	case FilterByType:
		name := "Income"
		if f.Type == core.Expense {
			name = "Expense"
		}
		if f.IncludeTransfers {
			return name + " (including transfers)"
		}
		return name + " only"
	case FilterCategory:
		cats := append([]string(nil), f.Categories...)
		sort.Strings(cats)
		if f.Exclude {
			return "Excluding: " + strings.Join(cats, ", ")
		}
		return "Only: " + strings.Join(cats, ", ")
	case FilterDateRange:
		switch {
		case !f.From.IsZero() && !f.To.IsZero():
			return f.From.Format("2006-01-02") + " to " + f.To.Format("2006-01-02")
		case !f.From.IsZero():
			return "From " + f.From.Format("2006-01-02")
		case !f.To.IsZero():
			return "Until " + f.To.Format("2006-01-02")
		}
		return "All dates"
	case FilterAmountRange:
		minM, maxM := core.Money{Cents: f.MinCents}, core.Money{Cents: f.MaxCents}
		switch {
		case f.MinCents > 0 && f.MaxCents > 0:
			return minM.String() + " - " + maxM.String()
		case f.MinCents > 0:
			return ">= " + minM.String()
		default:
			return "<= " + maxM.String()
		}
	case FilterNoteContains:
		return fmt.Sprintf("Contains %q", f.Search)
	case FilterTransfersOnly:
		return "Transfer transactions"
	case FilterNoTransfers:
		return "Excluding transfers"
	}
	return ""
}

// Composite combines filters with AND logic; an empty composite passes
// every transaction.
type Composite struct {
	filters []Filter
}

// Add appends a filter after validating it.
func (c *Composite) Add(f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	c.filters = append(c.filters, f)
	return nil
}

// Remove drops the filter at the given position.
func (c *Composite) Remove(i int) error {
	if i < 0 || i >= len(c.filters) {
		return fmt.Errorf("%w: filter #%d", core.ErrNotFound, i)
	}
	c.filters = append(c.filters[:i], c.filters[i+1:]...)
	return nil
}

// Clear removes all filters.
func (c *Composite) Clear() {
	c.filters = nil
}

// Len returns the number of active filters.
func (c *Composite) Len() int {
	return len(c.filters)
}

// Active returns a copy of the filter list.
func (c *Composite) Active() []Filter {
	return append([]Filter(nil), c.filters...)
}

// Matches is true only if every member filter matches.
func (c *Composite) Matches(t *core.Transaction) bool {
	for _, f := range c.filters {
		if !f.Matches(t) {
			return false
		}
	}
	return true
}

// Apply returns the transactions passing every filter, preserving order.
func (c *Composite) Apply(ts []*core.Transaction) []*core.Transaction {
	if len(c.filters) == 0 {
		return append([]*core.Transaction(nil), ts...)
	}
	out := make([]*core.Transaction, 0, len(ts))
	for _, t := range ts {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Summary joins the active filters' descriptions for display.
func (c *Composite) Summary() string {
	if len(c.filters) == 0 {
		return "None"
	}
	parts := make([]string, len(c.filters))
	for i, f := range c.filters {
		parts[i] = f.Name() + ": " + f.Description()
	}
	return strings.Join(parts, ", ")
}
