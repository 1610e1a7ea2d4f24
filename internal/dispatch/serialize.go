package dispatch

import (
	"time"

	"portafoglio/internal/core"
	"portafoglio/internal/strategy"
	"portafoglio/internal/wallet"
)

func txMap(w *wallet.Wallet, t *core.Transaction) map[string]any {
	sign := "+"
	if t.Type == core.Expense {
		sign = "-"
	}
	out := map[string]any{
		"id":            t.ID,
		"index":         t.Index,
		"type":          string(t.Type),
		"amount":        t.Amount.Float64(),
		"signed_amount": float64(t.SignedCents()) / 100,
		"category":      t.Category,
		"note":          t.Note,
		"date":          t.Date.Format("2006-01-02"),
		"display":       t.String(),
		"is_transfer":   t.IsTransfer(),
		"sign":          sign,
	}
	if t.RecurrenceID != "" {
		out["recurrence_id"] = t.RecurrenceID
	}
	if ref := t.Transfer; ref != nil {
		if t.Type == core.Expense {
			out["from_wallet"] = w.Name
			out["to_wallet"] = ref.Wallet
		} else {
			out["from_wallet"] = ref.Wallet
			out["to_wallet"] = w.Name
		}
	}
	return out
}

func txList(w *wallet.Wallet, ts []*core.Transaction) []map[string]any {
	out := make([]map[string]any, len(ts))
	for i, t := range ts {
		out[i] = txMap(w, t)
	}
	return out
}

func walletMap(w *wallet.Wallet) map[string]any {
	out := map[string]any{
		"id":                w.ID,
		"name":              w.Name,
		"kind":              string(w.Kind),
		"currency":          w.Currency,
		"description":       w.Description,
		"balance":           float64(w.BalanceCents()) / 100,
		"total_income":      w.TotalIncome().Float64(),
		"total_expense":     w.TotalExpense().Float64(),
		"transaction_count": w.Len(),
		"created":           w.CreatedAt.Format("2006-01-02 15:04"),
	}
	if w.Kind == wallet.Deposit {
		out["floor_balance"] = w.Floor.Float64()
	}
	return out
}

func recurringMap(rt *core.RecurringTransaction, now time.Time) map[string]any {
	out := map[string]any{
		"id":              rt.ID,
		"type":            string(rt.Type),
		"amount":          rt.Amount.Float64(),
		"category":        rt.Category,
		"note":            rt.Note,
		"wallet_name":     rt.WalletName,
		"active":          rt.Active,
		"status":          string(rt.Status(now)),
		"generated_count": rt.GeneratedCount,
		"pattern":         rt.Rule.Describe(),
		"start_date":      rt.StartDate.Format("2006-01-02"),
	}
	if !rt.LastMaterialized.IsZero() {
		out["last_materialized"] = rt.LastMaterialized.Format("2006-01-02")
	}
	if skips := rt.SkippedDates(); len(skips) > 0 {
		dates := make([]string, len(skips))
		for i, d := range skips {
			dates[i] = d.Format("2006-01-02")
		}
		out["skipped_dates"] = dates
	}
	return out
}

func filterMap(f strategy.Filter, index int) map[string]any {
	return map[string]any{
		"index":       index,
		"kind":        string(f.Kind),
		"name":        f.Name(),
		"description": f.Description(),
	}
}

func percentageMap(in map[string]float64) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func moneyMap(in map[string]core.Money) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v.Float64()
	}
	return out
}
