package wallet

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"portafoglio/internal/core"
	"portafoglio/internal/log"
	"portafoglio/internal/strategy"
)

// Manager owns the wallet collection, the active-wallet pointer, the
// wallet-level sort state, and the recurrence scheduler. It is the only
// component allowed to touch two wallets in one operation, which keeps
// transfer bookkeeping in a single place.
type Manager struct {
	wallets []*Wallet // insertion order, preserved for listing
	byName  map[string]*Wallet
	active  string

	WalletSort strategy.WalletSort
	scheduler  *Scheduler
	logger     *log.Logger
}

// NewManager builds an empty manager with its scheduler attached.
func NewManager(logger *log.Logger) *Manager {
	m := &Manager{
		byName:     make(map[string]*Wallet),
		WalletSort: strategy.DefaultWalletSort(),
		logger:     logger.WithComponent("wallet"),
	}
	m.scheduler = newScheduler(m, logger)
	return m
}

// Scheduler exposes the recurrence scheduler.
func (m *Manager) Scheduler() *Scheduler {
	return m.scheduler
}

// CreateWallet registers a new wallet. The first wallet created becomes
// the active one.
func (m *Manager) CreateWallet(name string, opts Options) (*Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: wallet name must not be empty", core.ErrInvalidRequest)
	}
	if _, exists := m.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", core.ErrDuplicateName, name)
	}
	w := newWallet(name, opts)
	m.wallets = append(m.wallets, w)
	m.byName[name] = w
	if m.active == "" {
		m.active = name
	}
	m.logger.Info("wallet created", "name", name, "kind", string(w.Kind))
	return w, nil
}

// Wallet looks a wallet up by name.
func (m *Manager) Wallet(name string) (*Wallet, error) {
	w, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: wallet %q", core.ErrNotFound, name)
	}
	return w, nil
}

// Active returns the currently selected wallet.
func (m *Manager) Active() (*Wallet, error) {
	if m.active == "" {
		return nil, fmt.Errorf("%w: no wallet selected, create a wallet first", core.ErrNotFound)
	}
	return m.byName[m.active], nil
}

// SwitchActive selects another wallet as active.
func (m *Manager) SwitchActive(name string) error {
	if _, ok := m.byName[name]; !ok {
		return fmt.Errorf("%w: wallet %q", core.ErrNotFound, name)
	}
	m.active = name
	return nil
}

// Count returns the number of wallets.
func (m *Manager) Count() int {
	return len(m.wallets)
}

// Wallets returns the wallets in insertion order.
func (m *Manager) Wallets() []*Wallet {
	return append([]*Wallet(nil), m.wallets...)
}

// SortedWallets returns the wallets ordered by the active wallet sort.
func (m *Manager) SortedWallets() []*Wallet {
	out := append([]*Wallet(nil), m.wallets...)
	s := m.WalletSort
	less := func(a, b *Wallet) bool {
		switch s.Kind {
		case strategy.WalletSortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case strategy.WalletSortByBalance:
			return a.BalanceCents() < b.BalanceCents()
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if s.Ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

// DeleteWallet removes a wallet. Counterpart transfer halves living in
// other wallets are converted to plain transactions so their ledgers keep
// their history. Deleting the active wallet promotes the next wallet in
// insertion order; deleting the last wallet fails with NoWalletsRemain.
func (m *Manager) DeleteWallet(name string) error {
	w, err := m.Wallet(name)
	if err != nil {
		return err
	}
	if m.active == name && len(m.wallets) == 1 {
		return core.ErrNoWalletsRemain
	}

	// Orphan-clear: linked halves elsewhere become plain transactions.
	for _, t := range w.transactions {
		ref := t.Transfer
		if ref == nil {
			continue
		}
		cw, ok := m.byName[ref.Wallet]
		if !ok || ref.Index < 0 || ref.Index >= cw.Len() {
			continue
		}
		ct := cw.transactions[ref.Index]
		if ct.Transfer != nil && ct.Transfer.Wallet == name {
			ct.Transfer = nil
		}
	}

	pos := 0
	for i, cand := range m.wallets {
		if cand == w {
			pos = i
			break
		}
	}
	m.wallets = append(m.wallets[:pos], m.wallets[pos+1:]...)
	delete(m.byName, name)
	removed := m.scheduler.RemoveForWallet(name)

	if m.active == name {
		next := m.wallets[0]
		if pos < len(m.wallets) {
			next = m.wallets[pos]
		}
		m.active = next.Name
	}
	m.logger.Info("wallet deleted", "name", name, "recurring_removed", removed, "active", m.active)
	return nil
}

// UpdateWallet renames a wallet and/or updates its currency and
// description. Renaming rewrites every transfer back-reference and
// recurring template that pointed at the old name.
func (m *Manager) UpdateWallet(name string, newName, currency, description *string) error {
	w, err := m.Wallet(name)
	if err != nil {
		return err
	}
	if newName != nil && *newName != name {
		nn := strings.TrimSpace(*newName)
		if nn == "" {
			return fmt.Errorf("%w: wallet name must not be empty", core.ErrInvalidRequest)
		}
		if _, exists := m.byName[nn]; exists {
			return fmt.Errorf("%w: %q", core.ErrDuplicateName, nn)
		}
		delete(m.byName, name)
		w.Name = nn
		m.byName[nn] = w
		for _, other := range m.wallets {
			for _, t := range other.transactions {
				if t.Transfer != nil && t.Transfer.Wallet == name {
					t.Transfer.Wallet = nn
				}
			}
		}
		for _, rt := range m.scheduler.Templates() {
			if rt.WalletName == name {
				rt.WalletName = nn
			}
		}
		if m.active == name {
			m.active = nn
		}
	}
	if currency != nil {
		w.Currency = *currency
	}
	if description != nil {
		w.Description = *description
	}
	return nil
}

// Transfer atomically moves money between two wallets: an expense half in
// the source, an income half in the destination, linked bidirectionally.
// Any failure leaves zero new transactions behind.
func (m *Manager) Transfer(fromName, toName string, amount core.Money, date time.Time, note string) (outIdx, inIdx int, err error) {
	src, err := m.Wallet(fromName)
	if err != nil {
		return 0, 0, err
	}
	dst, err := m.Wallet(toName)
	if err != nil {
		return 0, 0, err
	}
	if src == dst {
		return 0, 0, core.ErrSameWallet
	}
	if err := amount.Validate(); err != nil {
		return 0, 0, err
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	out := &core.Transaction{
		ID:       core.NewID(),
		Type:     core.Expense,
		Amount:   amount,
		Category: core.ReservedCategory,
		Date:     date,
		Note:     note,
	}
	outIdx, err = src.Add(out)
	if err != nil {
		return 0, 0, err
	}
	in := &core.Transaction{
		ID:       core.NewID(),
		Type:     core.Income,
		Amount:   amount,
		Category: core.ReservedCategory,
		Date:     date,
		Note:     note,
	}
	inIdx, err = dst.Add(in)
	if err != nil {
		// Roll back the source half so no unpaired transfer survives.
		src.removeAt(outIdx)
		return 0, 0, err
	}
	out.Transfer = &core.TransferRef{Wallet: dst.Name, Index: inIdx}
	in.Transfer = &core.TransferRef{Wallet: src.Name, Index: outIdx}
	m.logger.Info("transfer completed",
		"from", src.Name, "to", dst.Name, "amount", amount.String(), "date", date.Format("2006-01-02"))
	return outIdx, inIdx, nil
}

// EditFields carries the transaction fields an edit may replace; nil
// pointers leave the field untouched. The transaction type is fixed at
// creation.
type EditFields struct {
	Amount   *core.Money
	Category *string
	Date     *time.Time
	Note     *string
}

// EditTransaction replaces fields in place. For transfer halves the new
// amount and date propagate to the linked half; category and note stay
// per-side. Deposit floors are re-validated against the post-edit balance
// of whichever wallet holds the expense half.
func (m *Manager) EditTransaction(w *Wallet, index int, fields EditFields) error {
	t, err := w.Get(index)
	if err != nil {
		return err
	}

	if fields.Amount != nil {
		if err := fields.Amount.Validate(); err != nil {
			return err
		}
		if err := m.checkEditFloor(w, t, *fields.Amount); err != nil {
			return err
		}
	}

	counterpart := m.counterpart(w, t)

	if fields.Amount != nil {
		t.Amount = *fields.Amount
		if counterpart != nil {
			counterpart.Amount = *fields.Amount
		}
	}
	if fields.Date != nil {
		t.Date = *fields.Date
		if counterpart != nil {
			counterpart.Date = *fields.Date
		}
	}
	if fields.Category != nil {
		t.Category = *fields.Category
	}
	if fields.Note != nil {
		t.Note = *fields.Note
	}
	return nil
}

// counterpart resolves the linked transfer half, or nil for plain
// transactions and dangling references.
func (m *Manager) counterpart(w *Wallet, t *core.Transaction) *core.Transaction {
	ref := t.Transfer
	if ref == nil {
		return nil
	}
	cw, ok := m.byName[ref.Wallet]
	if !ok || ref.Index < 0 || ref.Index >= cw.Len() {
		return nil
	}
	ct := cw.transactions[ref.Index]
	if ct.Transfer == nil || ct.Transfer.Wallet != w.Name || ct.Transfer.Index != t.Index {
		return nil
	}
	return ct
}

// checkEditFloor validates a new amount against the deposit floor of the
// wallet holding the expense side of the edited transaction.
func (m *Manager) checkEditFloor(w *Wallet, t *core.Transaction, newAmount core.Money) error {
	expenseWallet, expenseTx := w, t
	if t.Type == core.Income {
		ct := m.counterpart(w, t)
		if ct == nil {
			return nil // plain income never breaches a floor
		}
		expenseWallet = m.byName[t.Transfer.Wallet]
		expenseTx = ct
	}
	if expenseWallet.Kind != Deposit {
		return nil
	}
	newBalance := expenseWallet.BalanceCents() + expenseTx.Amount.Cents - newAmount.Cents
	if newBalance < expenseWallet.Floor.Cents {
		return fmt.Errorf("%w: balance would drop below floor %s", core.ErrInsufficientFunds, expenseWallet.Floor)
	}
	return nil
}

// DeleteTransaction removes the transaction at index, cascading to its
// linked transfer half when one still exists, and keeps every surviving
// back-reference pointing at the right position after re-indexing.
func (m *Manager) DeleteTransaction(w *Wallet, index int) error {
	t, err := w.Get(index)
	if err != nil {
		return err
	}

	if ref := t.Transfer; ref != nil {
		if ct := m.counterpart(w, t); ct != nil {
			cw := m.byName[ref.Wallet]
			cw.removeAt(ct.Index)
			m.fixBackRefs(cw, ct.Index)
		}
		// A dangling reference (linked wallet already deleted) just
		// clears with this half.
	}

	w.removeAt(index)
	m.fixBackRefs(w, index)
	m.logger.Info("transaction deleted", "wallet", w.Name, "index", index, "transfer", t.Transfer != nil)
	return nil
}

// fixBackRefs repairs counterpart back-references after the transactions
// of w from position `from` onward shifted down by one.
func (m *Manager) fixBackRefs(w *Wallet, from int) {
	for j := from; j < len(w.transactions); j++ {
		t := w.transactions[j]
		if t.Transfer == nil {
			continue
		}
		cw, ok := m.byName[t.Transfer.Wallet]
		if !ok || t.Transfer.Index < 0 || t.Transfer.Index >= cw.Len() {
			continue
		}
		ct := cw.transactions[t.Transfer.Index]
		if ct.Transfer != nil && ct.Transfer.Wallet == w.Name {
			ct.Transfer.Index = j
		}
	}
}
