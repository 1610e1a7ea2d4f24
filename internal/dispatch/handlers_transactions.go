package dispatch

import (
	"fmt"

	"portafoglio/internal/core"
	"portafoglio/internal/wallet"
)

// getCategories lists the distinct categories already used in the active
// wallet, split by transaction type, so transports can offer them for
// reuse.
func (d *Dispatcher) getCategories(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	data := map[string]any{
		"income_categories":  w.Categories(core.Income),
		"expense_categories": w.Categories(core.Expense),
	}
	return "Categories for wallet " + w.Name, data, nil
}

func (d *Dispatcher) getTransaction(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	index, err := p.Int("index")
	if err != nil {
		return "", nil, err
	}
	t, err := w.Get(index)
	if err != nil {
		return "", nil, err
	}
	return "Transaction details", map[string]any{"transaction": txMap(w, t)}, nil
}

func (d *Dispatcher) addTransaction(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
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
	date, _, err := p.OptDate("date")
	if err != nil {
		return "", nil, err
	}
	t, err := core.NewTransaction(tt, amount, category, date, p.OptString("note", ""))
	if err != nil {
		return "", nil, err
	}
	if _, err := w.Add(t); err != nil {
		return "", nil, err
	}
	msg := fmt.Sprintf("Added %s of %s to %s", tt, amount, w.Name)
	return msg, map[string]any{"transaction": txMap(w, t)}, nil
}

func (d *Dispatcher) editTransaction(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	index, err := p.Int("index")
	if err != nil {
		return "", nil, err
	}
	var fields wallet.EditFields
	if amount, ok, err := p.OptAmount("amount"); err != nil {
		return "", nil, err
	} else if ok {
		fields.Amount = &amount
	}
	if p.Has("category") {
		category, err := p.String("category")
		if err != nil {
			return "", nil, err
		}
		fields.Category = &category
	}
	if date, ok, err := p.OptDate("date"); err != nil {
		return "", nil, err
	} else if ok {
		fields.Date = &date
	}
	if p.Has("note") {
		note := p.OptString("note", "")
		fields.Note = &note
	}
	if fields.Amount == nil && fields.Category == nil && fields.Date == nil && fields.Note == nil {
		return "", nil, fmt.Errorf("%w: nothing to edit", core.ErrInvalidRequest)
	}
	if err := d.manager.EditTransaction(w, index, fields); err != nil {
		return "", nil, err
	}
	t, err := w.Get(index)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Transaction #%d updated", index), map[string]any{"transaction": txMap(w, t)}, nil
}

func (d *Dispatcher) deleteTransaction(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	index, err := p.Int("index")
	if err != nil {
		return "", nil, err
	}
	t, err := w.Get(index)
	if err != nil {
		return "", nil, err
	}
	wasTransfer := t.Transfer != nil
	if err := d.manager.DeleteTransaction(w, index); err != nil {
		return "", nil, err
	}
	msg := fmt.Sprintf("Transaction #%d deleted", index)
	if wasTransfer {
		msg = fmt.Sprintf("Transfer pair deleted (transaction #%d and its counterpart)", index)
	}
	return msg, map[string]any{"remaining": w.Len()}, nil
}

// transfer moves money from one wallet to another. The source defaults to
// the active wallet when "from" is absent.
func (d *Dispatcher) transfer(p Params) (string, map[string]any, error) {
	from := p.OptString("from", "")
	if from == "" {
		w, err := d.active()
		if err != nil {
			return "", nil, err
		}
		from = w.Name
	}
	to, err := p.String("to")
	if err != nil {
		return "", nil, err
	}
	amount, err := p.Amount("amount")
	if err != nil {
		return "", nil, err
	}
	date, _, err := p.OptDate("date")
	if err != nil {
		return "", nil, err
	}
	outIdx, inIdx, err := d.manager.Transfer(from, to, amount, date, p.OptString("note", ""))
	if err != nil {
		return "", nil, err
	}
	msg := fmt.Sprintf("Transferred %s from %s to %s", amount, from, to)
	data := map[string]any{
		"from":       from,
		"to":         to,
		"amount":     amount.Float64(),
		"from_index": outIdx,
		"to_index":   inIdx,
	}
	return msg, data, nil
}

// getTransferContext lists the wallets a transfer from the active wallet
// could target. At least two wallets must exist for a transfer to make
// sense.
func (d *Dispatcher) getTransferContext(p Params) (string, map[string]any, error) {
	w, err := d.active()
	if err != nil {
		return "", nil, err
	}
	if d.manager.Count() < 2 {
		return "", nil, fmt.Errorf("%w: transfers need at least two wallets", core.ErrInvalidRequest)
	}
	var destinations []map[string]any
	for _, other := range d.manager.Wallets() {
		if other == w {
			continue
		}
		destinations = append(destinations, map[string]any{
			"name":     other.Name,
			"kind":     string(other.Kind),
			"currency": other.Currency,
			"balance":  float64(other.BalanceCents()) / 100,
		})
	}
	data := map[string]any{
		"from":         w.Name,
		"from_balance": float64(w.BalanceCents()) / 100,
		"destinations": destinations,
	}
	return "Transfer context", data, nil
}
