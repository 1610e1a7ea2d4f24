// Package dispatch is the single entry point every transport talks to: a
// string-keyed action table over the wallet manager. Requests carry an
// action name plus parameters; responses are a uniform
// {status, message, data} envelope. Domain errors never escape as raw
// errors; they are converted to error envelopes here.
package dispatch

import (
	"errors"
	"fmt"
	"time"

	"portafoglio/internal/core"
	"portafoglio/internal/log"
	"portafoglio/internal/wallet"
)

// Request is the uniform action message accepted from any transport.
type Request struct {
	Action string
	Params Params
}

// Response is the uniform result envelope returned to any transport.
type Response struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type route struct {
	desc     string
	required []string
	fn       func(Params) (string, map[string]any, error)
}

// Dispatcher routes action requests to business-logic operations.
type Dispatcher struct {
	manager *wallet.Manager
	routes  map[string]route
	logger  *log.Logger

	// Now supplies the clock; tests pin it to fixed instants.
	Now func() time.Time

	// DefaultCurrency applies when add_wallet omits the currency.
	DefaultCurrency string
}

// New builds a dispatcher over the given manager.
func New(m *wallet.Manager, logger *log.Logger) *Dispatcher {
	d := &Dispatcher{
		manager:         m,
		logger:          logger.WithComponent("dispatch"),
		Now:             time.Now,
		DefaultCurrency: "EUR",
	}
	d.routes = map[string]route{
		// Dashboard / general
		"get_dashboard":     {"Dashboard snapshot of the active wallet", nil, d.getDashboard},
		"get_help":          {"List the supported actions", nil, d.getHelp},
		"process_recurring": {"Materialize all due recurring transactions", nil, d.processRecurring},

		// Transaction CRUD
		"get_categories":     {"List categories used in the active wallet", nil, d.getCategories},
		"get_transaction":    {"Show one transaction of the active wallet", []string{"index"}, d.getTransaction},
		"add_transaction":    {"Add a transaction to the active wallet", []string{"type", "amount", "category"}, d.addTransaction},
		"edit_transaction":   {"Edit a transaction of the active wallet", []string{"index"}, d.editTransaction},
		"delete_transaction": {"Delete a transaction of the active wallet", []string{"index"}, d.deleteTransaction},

		// Transfers
		"transfer":             {"Move money between two wallets", []string{"to", "amount"}, d.transfer},
		"get_transfer_context": {"List possible transfer destinations", nil, d.getTransferContext},

		// Sorting
		"get_sorting_options":        {"List transaction sort kinds", nil, d.getSortingOptions},
		"set_sorting":                {"Set the active wallet's transaction sort", []string{"kind"}, d.setSorting},
		"get_wallet_sorting_options": {"List wallet sort kinds", nil, d.getWalletSortingOptions},
		"set_wallet_sorting":         {"Set the wallet listing sort", []string{"kind"}, d.setWalletSorting},

		// Filtering
		"add_filter":         {"Add a filter to the active wallet's view", []string{"kind"}, d.addFilter},
		"remove_filter":      {"Remove one active filter by position", []string{"filter_index"}, d.removeFilter},
		"clear_filters":      {"Remove all active filters", nil, d.clearFilters},
		"get_active_filters": {"List the active filters", nil, d.getActiveFilters},

		// Percentages
		"get_percentages": {"Per-category percentage breakdown", nil, d.getPercentages},

		// Wallet CRUD
		"get_wallets":       {"List all wallets", nil, d.getWallets},
		"get_wallet_detail": {"Show one wallet", []string{"name"}, d.getWalletDetail},
		"add_wallet":        {"Create a wallet", []string{"name"}, d.addWallet},
		"edit_wallet":       {"Rename or update a wallet", []string{"name"}, d.editWallet},
		"delete_wallet":     {"Delete a wallet", []string{"name"}, d.deleteWallet},
		"switch_wallet":     {"Switch the active wallet", []string{"name"}, d.switchWallet},

		// Recurring CRUD
		"add_recurring":        {"Create a recurring transaction template", []string{"type", "amount", "category", "rule"}, d.addRecurring},
		"get_recurring_list":   {"List recurring templates", nil, d.getRecurringList},
		"get_recurring_detail": {"Show one recurring template", []string{"index"}, d.getRecurringDetail},
		"edit_recurring":       {"Edit, pause or skip a recurring template", []string{"index", "edit_action"}, d.editRecurring},
		"delete_recurring":     {"Delete a recurring template", []string{"index"}, d.deleteRecurring},
	}
	return d
}

// Handle validates and routes one request, converting every domain
// failure into an error envelope. State is never left half-mutated: the
// underlying operations either complete or fail atomically.
func (d *Dispatcher) Handle(req Request) Response {
	r, ok := d.routes[req.Action]
	if !ok {
		return d.fail(req.Action, fmt.Errorf("%w: %q", core.ErrUnknownAction, req.Action))
	}
	if req.Params == nil {
		req.Params = Params{}
	}
	for _, key := range r.required {
		if !req.Params.Has(key) {
			return d.fail(req.Action, fmt.Errorf("%w: missing parameter %q", core.ErrInvalidRequest, key))
		}
	}
	// The reserved-category rule is enforced here, before delegation, so
	// it holds for every transport uniformly.
	if req.Action == "add_transaction" || req.Action == "edit_transaction" {
		if req.Params.OptString("category", "") == core.ReservedCategory {
			return d.fail(req.Action, core.ErrReservedCategory)
		}
	}
	msg, data, err := r.fn(req.Params)
	if err != nil {
		return d.fail(req.Action, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return Response{Status: StatusSuccess, Message: msg, Data: data}
}

func (d *Dispatcher) fail(action string, err error) Response {
	level := d.logger.Debug
	if errors.Is(err, core.ErrUnknownAction) || errors.Is(err, core.ErrUnknownStrategy) {
		level = d.logger.Warn
	}
	level("request failed", "action", action, "error", err)
	return Response{Status: StatusError, Message: err.Error(), Data: map[string]any{}}
}

// active resolves the currently selected wallet for handlers that operate
// on it.
func (d *Dispatcher) active() (*wallet.Wallet, error) {
	return d.manager.Active()
}
