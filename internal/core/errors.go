package core

import "errors"

// Sentinel domain errors. Callers classify failures with errors.Is; the
// dispatch layer turns them into error envelopes.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrReservedCategory  = errors.New("category \"Transfer\" is reserved for wallet transfers")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameWallet        = errors.New("source and destination wallet must differ")
	ErrDuplicateName     = errors.New("a wallet with that name already exists")
	ErrNoWalletsRemain   = errors.New("cannot delete the last remaining wallet")
	ErrUnknownStrategy   = errors.New("unknown strategy")
	ErrUnknownAction     = errors.New("unknown action")
)
