// Package core holds the budget tracker's domain model: monetary amounts,
// transactions, transfer links, and recurrence rules. Everything here is
// plain in-memory state; the package performs no I/O.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TxType distinguishes money coming in from money going out.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// ParseTxType accepts the canonical names plus the "+"/"-" shorthand the
// transports use.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "+":
		return Income, nil
	case "expense", "-":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: transaction type %q", ErrInvalidRequest, s)
}

// ReservedCategory is assignable only through the transfer-creation path.
const ReservedCategory = "Transfer"

// TransferRef points at the counterpart half of a transfer. It is a lookup
// key (wallet name plus position), not an owning reference; each wallet
// stays solely responsible for its own transaction list.
type TransferRef struct {
	Wallet string
	Index  int
}

// Transaction is a single monetary movement owned by exactly one wallet.
// Index is its position in the owning wallet's list, contiguous 0..n-1.
type Transaction struct {
	ID           string
	Index        int
	Type         TxType
	Amount       Money
	Category     string
	Date         time.Time
	Note         string
	RecurrenceID string       // set when materialized from a recurring template
	Transfer     *TransferRef // nil for plain transactions
}

// NewID returns a short unique identifier for domain entities.
func NewID() string {
	return uuid.NewString()[:8]
}

// NewTransaction builds a validated plain transaction.
func NewTransaction(tt TxType, amount Money, category string, date time.Time, note string) (*Transaction, error) {
	if tt != Income && tt != Expense {
		return nil, fmt.Errorf("%w: transaction type %q", ErrInvalidRequest, tt)
	}
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: category must not be empty", ErrInvalidRequest)
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &Transaction{
		ID:       NewID(),
		Type:     tt,
		Amount:   amount,
		Category: category,
		Date:     date,
		Note:     note,
	}, nil
}

// SignedCents returns the amount with its sign: positive for income,
// negative for expense.
func (t *Transaction) SignedCents() int64 {
	if t.Type == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

// IsTransfer reports whether this transaction is one half of a transfer
// pair, or was one before its counterpart's wallet disappeared.
func (t *Transaction) IsTransfer() bool {
	return t.Transfer != nil || t.Category == ReservedCategory
}

func (t *Transaction) String() string {
	sign := "+"
	if t.Type == Expense {
		sign = "-"
	}
	return fmt.Sprintf("%s - %s%s", t.Category, sign, t.Amount)
}

// ParseDate parses the date formats the transports send. Accepted layouts:
// 2006-01-02, 2006-01-02 15:04:05, and RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidRequest, s)
}

// DateOnly truncates a timestamp to midnight UTC, the granularity at which
// occurrence dates are compared.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
