package dispatch

import (
	"fmt"

	"portafoglio/internal/core"
	"portafoglio/internal/strategy"
	"portafoglio/internal/wallet"
)

func (d *Dispatcher) getWallets(p Params) (string, map[string]any, error) {
	ws := d.manager.SortedWallets()
	list := make([]map[string]any, len(ws))
	activeName := ""
	if w, err := d.manager.Active(); err == nil {
		activeName = w.Name
	}
	for i, w := range ws {
		m := walletMap(w)
		m["active"] = w.Name == activeName
		list[i] = m
	}
	data := map[string]any{
		"wallets": list,
		"count":   len(ws),
		"active":  activeName,
		"sorting": d.manager.WalletSort.Name(),
	}
	return fmt.Sprintf("%d wallet(s)", len(ws)), data, nil
}

func (d *Dispatcher) getWalletDetail(p Params) (string, map[string]any, error) {
	name, err := p.String("name")
	if err != nil {
		return "", nil, err
	}
	w, err := d.manager.Wallet(name)
	if err != nil {
		return "", nil, err
	}
	return "Wallet " + w.Name, map[string]any{"wallet": walletMap(w)}, nil
}

func (d *Dispatcher) addWallet(p Params) (string, map[string]any, error) {
	name, err := p.String("name")
	if err != nil {
		return "", nil, err
	}
	kind, err := wallet.ParseKind(p.OptString("kind", ""))
	if err != nil {
		return "", nil, err
	}
	opts := wallet.Options{
		Kind:        kind,
		Currency:    p.OptString("currency", d.DefaultCurrency),
		Description: p.OptString("description", ""),
	}
	if starting, ok, err := p.OptAmount("starting_value"); err != nil {
		return "", nil, err
	} else if ok {
		opts.StartingValue = starting
	}
	if kind == wallet.Deposit {
		if floor, ok, err := p.OptAmount("floor_balance"); err != nil {
			return "", nil, err
		} else if ok {
			opts.Floor = floor
		}
	}
	w, err := d.manager.CreateWallet(name, opts)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Wallet %q created", w.Name), map[string]any{"wallet": walletMap(w)}, nil
}

func (d *Dispatcher) editWallet(p Params) (string, map[string]any, error) {
	name, err := p.String("name")
	if err != nil {
		return "", nil, err
	}
	var newName, currency, description *string
	if p.Has("new_name") {
		nn, err := p.String("new_name")
		if err != nil {
			return "", nil, err
		}
		newName = &nn
	}
	if p.Has("currency") {
		c, err := p.String("currency")
		if err != nil {
			return "", nil, err
		}
		currency = &c
	}
	if p.Has("description") {
		desc := p.OptString("description", "")
		description = &desc
	}
	if newName == nil && currency == nil && description == nil {
		return "", nil, fmt.Errorf("%w: nothing to edit", core.ErrInvalidRequest)
	}
	if err := d.manager.UpdateWallet(name, newName, currency, description); err != nil {
		return "", nil, err
	}
	final := name
	if newName != nil {
		final = *newName
	}
	w, err := d.manager.Wallet(final)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Wallet %q updated", final), map[string]any{"wallet": walletMap(w)}, nil
}

func (d *Dispatcher) deleteWallet(p Params) (string, map[string]any, error) {
	name, err := p.String("name")
	if err != nil {
		return "", nil, err
	}
	if err := d.manager.DeleteWallet(name); err != nil {
		return "", nil, err
	}
	data := map[string]any{"remaining": d.manager.Count()}
	if w, err := d.manager.Active(); err == nil {
		data["active"] = w.Name
	}
	return fmt.Sprintf("Wallet %q deleted", name), data, nil
}

func (d *Dispatcher) switchWallet(p Params) (string, map[string]any, error) {
	name, err := p.String("name")
	if err != nil {
		return "", nil, err
	}
	if err := d.manager.SwitchActive(name); err != nil {
		return "", nil, err
	}
	w, _ := d.manager.Active()
	return fmt.Sprintf("Switched to wallet %q", name), map[string]any{"wallet": walletMap(w)}, nil
}

func (d *Dispatcher) getWalletSortingOptions(p Params) (string, map[string]any, error) {
	data := map[string]any{
		"kinds": []string{
			string(strategy.WalletSortByCreated),
			string(strategy.WalletSortByName),
			string(strategy.WalletSortByBalance),
		},
		"current": d.manager.WalletSort.Name(),
	}
	return "Wallet sorting options", data, nil
}

func (d *Dispatcher) setWalletSorting(p Params) (string, map[string]any, error) {
	raw, err := p.String("kind")
	if err != nil {
		return "", nil, err
	}
	kind, err := strategy.ParseWalletSortKind(raw)
	if err != nil {
		return "", nil, err
	}
	ascending, err := p.OptBool("ascending", true)
	if err != nil {
		return "", nil, err
	}
	d.manager.WalletSort = strategy.WalletSort{Kind: kind, Ascending: ascending}
	return "Wallet sorting set to " + d.manager.WalletSort.Name(),
		map[string]any{"sorting": d.manager.WalletSort.Name()}, nil
}
