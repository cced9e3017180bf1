package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a transaction and fixes the sign of its balance delta.
type Type string

const (
	TypeIncome      Type = "INCOME"
	TypeExpense     Type = "EXPENSE"
	TypeTransferIn  Type = "TRANSFER_IN"
	TypeTransferOut Type = "TRANSFER_OUT"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransferIn, TypeTransferOut:
		return true
	}

	return false
}

// TransferCategory is the reserved category name resolved lazily the
// first time a user transfers between accounts.
const TransferCategory = "Transfer"

// Transaction represents a posted ledger entry. Amount is a positive
// magnitude in cents; the sign applied to the account balance comes
// from Type via SignedAmount.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	CategoryID  uuid.UUID
	Description string
	Amount      int64 // cents, always > 0
	Type        Type
	Date        time.Time // transaction date, distinct from CreatedAt
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// SignedAmount converts a positive magnitude into the delta it applies
// to the owning account's balance. Every balance computation in the
// package goes through this function.
func SignedAmount(t Type, amount int64) int64 {
	switch t {
	case TypeIncome, TypeTransferIn:
		return amount
	default:
		return -amount
	}
}

// ListFilter narrows transaction listings. Both date bounds are
// inclusive; End is normalized to the last instant of its calendar day
// by the service.
type ListFilter struct {
	AccountID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// AccountRef is the slice of an account the engine needs inside an
// atomic unit: identity for delta targeting, name for default
// transfer descriptions.
type AccountRef struct {
	ID   uuid.UUID
	Name string
}

// AccountSnapshot carries the balance anchors used by the
// reconstruction queries.
type AccountSnapshot struct {
	ID             uuid.UUID
	Name           string
	InitialBalance int64
	Balance        int64
}

// PeriodBalance is the result of an opening/closing reconstruction
// over a date range.
type PeriodBalance struct {
	AccountID uuid.UUID
	Opening   int64
	Closing   int64
	Net       int64
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
