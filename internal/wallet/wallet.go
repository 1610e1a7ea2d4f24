// Package wallet owns the ledger side of the budget tracker: wallets and
// their transaction lists, the manager that orchestrates transfers and
// wallet lifecycle, and the scheduler that materializes recurring
// templates. All state is in memory; callers serialize access.
package wallet

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"portafoglio/internal/core"
	"portafoglio/internal/strategy"
)

// Kind tags the wallet behavior variant. Deposit wallets overlay a
// floor-balance check on withdrawals; storage is identical.
type Kind string

const (
	Regular Kind = "regular"
	Deposit Kind = "deposit"
)

// ParseKind validates a wallet kind name from a transport.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Regular, "":
		return Regular, nil
	case Deposit:
		return Deposit, nil
	}
	return "", fmt.Errorf("%w: wallet kind %q", core.ErrInvalidRequest, s)
}

// Options configure wallet creation.
type Options struct {
	Kind          Kind
	Currency      string
	Description   string
	Floor         core.Money // deposit wallets: balance may not drop below this
	StartingValue core.Money // materialized as an opening income transaction
}

// Wallet is a named ledger holding an ordered list of transactions plus
// the filter/sort state applied to its read views.
type Wallet struct {
	ID          string
	Name        string
	Kind        Kind
	Currency    string
	Description string
	Floor       core.Money
	CreatedAt   time.Time

	transactions []*core.Transaction
	Filters      strategy.Composite
	Sort         strategy.TransactionSort
}

// OpeningCategory labels the transaction materializing a starting value.
const OpeningCategory = "Opening Balance"

func newWallet(name string, opts Options) *Wallet {
	if opts.Kind == "" {
		opts.Kind = Regular
	}
	w := &Wallet{
		ID:          core.NewID(),
		Name:        name,
		Kind:        opts.Kind,
		Currency:    opts.Currency,
		Description: opts.Description,
		Floor:       opts.Floor,
		CreatedAt:   time.Now().UTC(),
		Sort:        strategy.DefaultTransactionSort(),
	}
	if opts.StartingValue.Cents > 0 {
		opening := &core.Transaction{
			ID:       core.NewID(),
			Type:     core.Income,
			Amount:   opts.StartingValue,
			Category: OpeningCategory,
			Date:     w.CreatedAt,
		}
		w.append(opening)
	}
	return w
}

func (w *Wallet) append(t *core.Transaction) int {
	t.Index = len(w.transactions)
	w.transactions = append(w.transactions, t)
	return t.Index
}

// Add validates the floor constraint and appends the transaction,
// returning its new index.
func (w *Wallet) Add(t *core.Transaction) (int, error) {
	if t.Type == core.Expense {
		if err := w.CanWithdraw(t.Amount); err != nil {
			return 0, err
		}
	}
	return w.append(t), nil
}

// CanWithdraw reports whether removing the amount would breach a deposit
// wallet's floor balance. Regular wallets always allow it.
func (w *Wallet) CanWithdraw(amount core.Money) error {
	if w.Kind != Deposit {
		return nil
	}
	if w.BalanceCents()-amount.Cents < w.Floor.Cents {
		return fmt.Errorf("%w: balance %s would drop below floor %s",
			core.ErrInsufficientFunds, core.Money{Cents: w.BalanceCents()}, w.Floor)
	}
	return nil
}

// Get returns the transaction at the given index.
func (w *Wallet) Get(i int) (*core.Transaction, error) {
	if i < 0 || i >= len(w.transactions) {
		return nil, fmt.Errorf("%w: transaction #%d in wallet %q", core.ErrNotFound, i, w.Name)
	}
	return w.transactions[i], nil
}

// removeAt drops the transaction at i and re-indexes the remainder so
// indices stay contiguous 0..n-1 in stored order. Back-reference fix-up
// for shifted transfer halves is the manager's job.
func (w *Wallet) removeAt(i int) *core.Transaction {
	t := w.transactions[i]
	w.transactions = append(w.transactions[:i], w.transactions[i+1:]...)
	for j := i; j < len(w.transactions); j++ {
		w.transactions[j].Index = j
	}
	return t
}

// Len returns the number of stored transactions.
func (w *Wallet) Len() int {
	return len(w.transactions)
}

// Transactions returns the full list in stored order.
func (w *Wallet) Transactions() []*core.Transaction {
	return append([]*core.Transaction(nil), w.transactions...)
}

// FilteredSorted produces the wallet's current read view: the active
// composite filter followed by the active sort. Each call recomputes from
// live state; the stored order is never touched.
func (w *Wallet) FilteredSorted() []*core.Transaction {
	view := w.Filters.Apply(w.transactions)
	w.Sort.Apply(view)
	return view
}

// BalanceCents is income minus expense over the unfiltered list. Dashboard
// totals ignore active filters by design of the contract.
func (w *Wallet) BalanceCents() int64 {
	var total int64
	for _, t := range w.transactions {
		total += t.SignedCents()
	}
	return total
}

// TotalIncome sums all income transactions, ignoring filters.
func (w *Wallet) TotalIncome() core.Money {
	var total int64
	for _, t := range w.transactions {
		if t.Type == core.Income {
			total += t.Amount.Cents
		}
	}
	return core.Money{Cents: total}
}

// TotalExpense sums all expense transactions, ignoring filters.
func (w *Wallet) TotalExpense() core.Money {
	var total int64
	for _, t := range w.transactions {
		if t.Type == core.Expense {
			total += t.Amount.Cents
		}
	}
	return core.Money{Cents: total}
}

// Categories lists the distinct categories used by transactions of the
// given type, sorted alphabetically.
func (w *Wallet) Categories(tt core.TxType) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range w.transactions {
		if t.Type != tt {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}

// Breakdown accumulates per-category totals for the given transactions,
// split by type.
func Breakdown(ts []*core.Transaction) (income, expense map[string]core.Money) {
	income = make(map[string]core.Money)
	expense = make(map[string]core.Money)
	for _, t := range ts {
		if t.Type == core.Income {
			income[t.Category] = core.Money{Cents: income[t.Category].Cents + t.Amount.Cents}
		} else {
			expense[t.Category] = core.Money{Cents: expense[t.Category].Cents + t.Amount.Cents}
		}
	}
	return income, expense
}

// Percentages converts per-category totals into percentage shares of their
// sum. An empty or all-zero input yields an empty map.
func Percentages(totals map[string]core.Money) map[string]float64 {
	var sum int64
	for _, m := range totals {
		sum += m.Cents
	}
	if sum == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(totals))
	for cat, m := range totals {
		out[cat] = float64(m.Cents) / float64(sum) * 100
	}
	return out
}
