package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no account with that id belongs to the user.
	ErrNotFound = errors.New("account not found")
	// ErrInUse indicates transactions still reference the account, so
	// deletion is blocked.
	ErrInUse = errors.New("account has transactions")
	// ErrInvalidType indicates an unknown account type.
	ErrInvalidType = errors.New("invalid account type")
)

// Type is the fixed account classification.
type Type string

const (
	TypeChecking   Type = "checking"
	TypeSavings    Type = "savings"
	TypeInvestment Type = "investment"
	TypeCash       Type = "cash"
	TypeCreditCard Type = "credit_card"
)

func (t Type) Valid() bool {
	switch t {
	case TypeChecking, TypeSavings, TypeInvestment, TypeCash, TypeCreditCard:
		return true
	}

	return false
}

// Account holds a user's financial account. InitialBalance is an
// immutable snapshot taken at creation; Balance is the cached running
// total and is mutated only by the balance engine.
type Account struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Type           Type
	InitialBalance int64
	Balance        int64
	Color          string
	Icon           string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
