package strategy

import (
	"fmt"
	"sort"
	"strings"

	"portafoglio/internal/core"
)

// SortKind names a transaction sort variant.
type SortKind string

const (
	SortByDate     SortKind = "date"
	SortByAmount   SortKind = "amount"
	SortByCategory SortKind = "category"
)

// TransactionSort is the active sort specification for a wallet's view.
type TransactionSort struct {
	Kind      SortKind
	Ascending bool
}

// DefaultTransactionSort shows the most recent transactions first.
func DefaultTransactionSort() TransactionSort {
	return TransactionSort{Kind: SortByDate, Ascending: false}
}

// ParseSortKind validates a transaction sort name from a transport.
func ParseSortKind(s string) (SortKind, error) {
	switch SortKind(strings.ToLower(strings.TrimSpace(s))) {
	case SortByDate:
		return SortByDate, nil
	case SortByAmount:
		return SortByAmount, nil
	case SortByCategory:
		return SortByCategory, nil
	}
	return "", fmt.Errorf("%w: sort %q", core.ErrUnknownStrategy, s)
}

// Apply sorts the slice in place, stably, so equal keys keep their stored
// relative order.
func (s TransactionSort) Apply(ts []*core.Transaction) {
	less := func(a, b *core.Transaction) bool {
		switch s.Kind {
		case SortByAmount:
			return a.Amount.Cents < b.Amount.Cents
		case SortByCategory:
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		default:
			return a.Date.Before(b.Date)
		}
	}
	sort.SliceStable(ts, func(i, j int) bool {
		if s.Ascending {
			return less(ts[i], ts[j])
		}
		return less(ts[j], ts[i])
	})
}

// Name renders the specification for display, e.g. "date (descending)".
func (s TransactionSort) Name() string {
	dir := "descending"
	if s.Ascending {
		dir = "ascending"
	}
	return fmt.Sprintf("%s (%s)", s.Kind, dir)
}

// WalletSortKind names a wallet-list sort variant. The comparison itself
// lives with the wallet manager, which owns the compared fields.
type WalletSortKind string

const (
	WalletSortByCreated WalletSortKind = "created"
	WalletSortByName    WalletSortKind = "name"
	WalletSortByBalance WalletSortKind = "balance"
)

// WalletSort is the manager-level sort specification for wallet listings.
type WalletSort struct {
	Kind      WalletSortKind
	Ascending bool
}

// DefaultWalletSort lists wallets oldest first (insertion order).
func DefaultWalletSort() WalletSort {
	return WalletSort{Kind: WalletSortByCreated, Ascending: true}
}

// ParseWalletSortKind validates a wallet sort name from a transport.
func ParseWalletSortKind(s string) (WalletSortKind, error) {
	switch WalletSortKind(strings.ToLower(strings.TrimSpace(s))) {
	case WalletSortByCreated:
		return WalletSortByCreated, nil
	case WalletSortByName:
		return WalletSortByName, nil
	case WalletSortByBalance:
		return WalletSortByBalance, nil
	}
	return "", fmt.Errorf("%w: wallet sort %q", core.ErrUnknownStrategy, s)
}

// Name renders the specification for display.
func (s WalletSort) Name() string {
	dir := "descending"
	if s.Ascending {
		dir = "ascending"
	}
	return fmt.Sprintf("%s (%s)", s.Kind, dir)
}
