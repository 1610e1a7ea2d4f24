package wallet

import (
	"errors"
	"testing"
	"time"

	"portafoglio/internal/core"
)

func testManager(t *testing.T, names ...string) *Manager {
	t.Helper()
	m := NewManager(testLogger())
	for _, name := range names {
		if _, err := m.CreateWallet(name, Options{}); err != nil {
			t.Fatalf("CreateWallet(%q): %v", name, err)
		}
	}
	return m
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestFirstWalletBecomesActive(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	w, err := m.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if w.Name != "Main" {
		t.Fatalf("expected Main active, got %s", w.Name)
	}
	if err := m.SwitchActive("Savings"); err != nil {
		t.Fatalf("SwitchActive: %v", err)
	}
	w, _ = m.Active()
	if w.Name != "Savings" {
		t.Fatalf("expected Savings active, got %s", w.Name)
	}
	if err := m.SwitchActive("Nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateWalletRejectsDuplicates(t *testing.T) {
	m := testManager(t, "Main")
	if _, err := m.CreateWallet("Main", Options{}); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := m.CreateWallet("  ", Options{}); !errors.Is(err, core.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank name, got %v", err)
	}
}

func TestActiveWithoutWallets(t *testing.T) {
	m := NewManager(testLogger())
	if _, err := m.Active(); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransferCreatesLinkedPair(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	outIdx, inIdx, err := m.Transfer("Main", "Savings", core.Money{Cents: 5000}, day(10), "stash")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	src, _ := m.Wallet("Main")
	dst, _ := m.Wallet("Savings")
	out, _ := src.Get(outIdx)
	in, _ := dst.Get(inIdx)

	if out.Type != core.Expense || in.Type != core.Income {
		t.Fatalf("wrong half types: %s / %s", out.Type, in.Type)
	}
	if out.Category != core.ReservedCategory || in.Category != core.ReservedCategory {
		t.Fatal("transfer halves must carry the reserved category")
	}
	if out.Amount != in.Amount || !out.Date.Equal(in.Date) {
		t.Fatal("transfer halves must share amount and date")
	}
	if out.Transfer == nil || out.Transfer.Wallet != "Savings" || out.Transfer.Index != inIdx {
		t.Fatalf("bad outgoing reference: %+v", out.Transfer)
	}
	if in.Transfer == nil || in.Transfer.Wallet != "Main" || in.Transfer.Index != outIdx {
		t.Fatalf("bad incoming reference: %+v", in.Transfer)
	}
	if src.BalanceCents() != -5000 || dst.BalanceCents() != 5000 {
		t.Fatalf("balances off: %d / %d", src.BalanceCents(), dst.BalanceCents())
	}
}

func TestTransferFailures(t *testing.T) {
	m := testManager(t, "Main", "Savings")

	if _, _, err := m.Transfer("Main", "Main", core.Money{Cents: 100}, day(1), ""); !errors.Is(err, core.ErrSameWallet) {
		t.Fatalf("expected ErrSameWallet, got %v", err)
	}
	if _, _, err := m.Transfer("Main", "Nope", core.Money{Cents: 100}, day(1), ""); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := m.Transfer("Main", "Savings", core.Money{}, day(1), ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	src, _ := m.Wallet("Main")
	dst, _ := m.Wallet("Savings")
	if src.Len() != 0 || dst.Len() != 0 {
		t.Fatal("failed transfers must leave no transactions behind")
	}
}

func TestTransferRespectsDepositFloor(t *testing.T) {
	m := testManager(t, "Main")
	if _, err := m.CreateWallet("Vault", Options{
		Kind:          Deposit,
		Floor:         core.Money{Cents: 10000},
		StartingValue: core.Money{Cents: 20000},
	}); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}

	if _, _, err := m.Transfer("Vault", "Main", core.Money{Cents: 15000}, day(1), ""); !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	vault, _ := m.Wallet("Vault")
	main, _ := m.Wallet("Main")
	if vault.Len() != 1 || main.Len() != 0 {
		t.Fatal("rejected transfer must leave both wallets unchanged")
	}
}

func TestDeleteTransactionCascadesToCounterpart(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	main, _ := m.Wallet("Main")
	savings, _ := m.Wallet("Savings")
	mustAdd(t, main, mustTx(t, core.Income, 100000, "Salary", 1))

	// Two transfers so deleting the first shifts the second's indices.
	if _, _, err := m.Transfer("Main", "Savings", core.Money{Cents: 1000}, day(5), "first"); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if _, _, err := m.Transfer("Main", "Savings", core.Money{Cents: 2000}, day(6), "second"); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	// Delete the first transfer's expense half (index 1 in Main).
	if err := m.DeleteTransaction(main, 1); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	if main.Len() != 2 || savings.Len() != 1 {
		t.Fatalf("expected 2/1 transactions, got %d/%d", main.Len(), savings.Len())
	}

	// The surviving pair must still point at each other.
	out, _ := main.Get(1)
	in, _ := savings.Get(0)
	if out.Note != "second" || in.Note != "second" {
		t.Fatal("wrong transactions survived")
	}
	if out.Transfer.Wallet != "Savings" || out.Transfer.Index != in.Index {
		t.Fatalf("outgoing reference broken: %+v", out.Transfer)
	}
	if in.Transfer.Wallet != "Main" || in.Transfer.Index != out.Index {
		t.Fatalf("incoming reference broken: %+v", in.Transfer)
	}
}

func TestEditTransferPropagatesAmountAndDateOnly(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	outIdx, inIdx, err := m.Transfer("Main", "Savings", core.Money{Cents: 5000}, day(10), "stash")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	main, _ := m.Wallet("Main")
	savings, _ := m.Wallet("Savings")

	newAmount := core.Money{Cents: 7500}
	newDate := day(12)
	newNote := "updated"
	if err := m.EditTransaction(main, outIdx, EditFields{Amount: &newAmount, Date: &newDate, Note: &newNote}); err != nil {
		t.Fatalf("EditTransaction: %v", err)
	}

	out, _ := main.Get(outIdx)
	in, _ := savings.Get(inIdx)
	if in.Amount != newAmount || !in.Date.Equal(newDate) {
		t.Fatal("amount and date must propagate to the counterpart")
	}
	if in.Note != "stash" {
		t.Fatalf("note must stay per-side, counterpart got %q", in.Note)
	}
	if out.Note != "updated" {
		t.Fatalf("edited side note wrong: %q", out.Note)
	}
}

func TestEditRespectsDepositFloor(t *testing.T) {
	m := testManager(t)
	if _, err := m.CreateWallet("Vault", Options{
		Kind:          Deposit,
		Floor:         core.Money{Cents: 10000},
		StartingValue: core.Money{Cents: 50000},
	}); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	vault, _ := m.Wallet("Vault")
	idx := mustAdd(t, vault, mustTx(t, core.Expense, 10000, "Withdrawal", 5))

	tooBig := core.Money{Cents: 45000}
	if err := m.EditTransaction(vault, idx, EditFields{Amount: &tooBig}); !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	tx, _ := vault.Get(idx)
	if tx.Amount.Cents != 10000 {
		t.Fatal("rejected edit must leave the amount unchanged")
	}

	fits := core.Money{Cents: 40000}
	if err := m.EditTransaction(vault, idx, EditFields{Amount: &fits}); err != nil {
		t.Fatalf("EditTransaction: %v", err)
	}
}

func TestDeleteWalletOrphansCounterparts(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	if _, _, err := m.Transfer("Main", "Savings", core.Money{Cents: 5000}, day(10), ""); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	savings, _ := m.Wallet("Savings")

	if err := m.DeleteWallet("Main"); err != nil {
		t.Fatalf("DeleteWallet: %v", err)
	}

	// The income half survives as a plain transaction keeping its history.
	in, _ := savings.Get(0)
	if in.Transfer != nil {
		t.Fatalf("expected orphaned half to drop its reference, got %+v", in.Transfer)
	}
	if in.Category != core.ReservedCategory {
		t.Fatal("orphaned half keeps its category")
	}
	if savings.BalanceCents() != 5000 {
		t.Fatalf("orphaned half must keep affecting the balance, got %d", savings.BalanceCents())
	}
}

func TestDeleteWalletPromotesNextActive(t *testing.T) {
	m := testManager(t, "A", "B", "C")
	if err := m.DeleteWallet("A"); err != nil {
		t.Fatalf("DeleteWallet: %v", err)
	}
	w, _ := m.Active()
	if w.Name != "B" {
		t.Fatalf("expected B active, got %s", w.Name)
	}

	// Deleting the last in insertion order wraps to the first.
	if err := m.SwitchActive("C"); err != nil {
		t.Fatalf("SwitchActive: %v", err)
	}
	if err := m.DeleteWallet("C"); err != nil {
		t.Fatalf("DeleteWallet: %v", err)
	}
	w, _ = m.Active()
	if w.Name != "B" {
		t.Fatalf("expected B active after wrap, got %s", w.Name)
	}
}

func TestDeleteLastActiveWalletFails(t *testing.T) {
	m := testManager(t, "Main")
	if err := m.DeleteWallet("Main"); !errors.Is(err, core.ErrNoWalletsRemain) {
		t.Fatalf("expected ErrNoWalletsRemain, got %v", err)
	}
	if m.Count() != 1 {
		t.Fatal("wallet must survive the rejected deletion")
	}
}

func TestDeleteWalletRemovesItsRecurring(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	rt, err := core.NewRecurring(core.Expense, core.Money{Cents: 100}, "Sub", "", "Savings",
		core.RecurrenceRule{Frequency: core.Monthly}, day(1))
	if err != nil {
		t.Fatalf("NewRecurring: %v", err)
	}
	m.Scheduler().Add(rt)

	if err := m.DeleteWallet("Savings"); err != nil {
		t.Fatalf("DeleteWallet: %v", err)
	}
	if got := len(m.Scheduler().Templates()); got != 0 {
		t.Fatalf("expected 0 templates after wallet deletion, got %d", got)
	}
}

func TestRenameWalletRewritesReferences(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	if _, _, err := m.Transfer("Main", "Savings", core.Money{Cents: 5000}, day(10), ""); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	rt, err := core.NewRecurring(core.Expense, core.Money{Cents: 100}, "Sub", "", "Savings",
		core.RecurrenceRule{Frequency: core.Monthly}, day(1))
	if err != nil {
		t.Fatalf("NewRecurring: %v", err)
	}
	m.Scheduler().Add(rt)
	if err := m.SwitchActive("Savings"); err != nil {
		t.Fatalf("SwitchActive: %v", err)
	}

	newName := "Rainy Day"
	if err := m.UpdateWallet("Savings", &newName, nil, nil); err != nil {
		t.Fatalf("UpdateWallet: %v", err)
	}

	main, _ := m.Wallet("Main")
	out, _ := main.Get(0)
	if out.Transfer.Wallet != "Rainy Day" {
		t.Fatalf("transfer reference not rewritten: %q", out.Transfer.Wallet)
	}
	if rt.WalletName != "Rainy Day" {
		t.Fatalf("recurring target not rewritten: %q", rt.WalletName)
	}
	w, _ := m.Active()
	if w.Name != "Rainy Day" {
		t.Fatalf("active pointer not rewritten: %q", w.Name)
	}
	if _, err := m.Wallet("Savings"); !errors.Is(err, core.ErrNotFound) {
		t.Fatal("old name must no longer resolve")
	}
}

func TestRenameWalletRejectsTakenName(t *testing.T) {
	m := testManager(t, "Main", "Savings")
	taken := "Main"
	if err := m.UpdateWallet("Savings", &taken, nil, nil); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}
