package ledger

import "errors"

var (
	// ErrNotFound indicates the transaction id does not exist.
	ErrNotFound = errors.New("transaction not found")
	// ErrAccessDenied indicates the resource exists but belongs to another user.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidReference indicates a referenced account or category is
	// not owned by the acting user.
	ErrInvalidReference = errors.New("invalid account or category reference")
	// ErrInvalidTransfer indicates a same-account transfer or a
	// non-positive amount.
	ErrInvalidTransfer = errors.New("invalid transfer")
	// ErrInvalidType indicates an unknown transaction type.
	ErrInvalidType = errors.New("invalid transaction type")
	// ErrInvalidAmount indicates a non-positive transaction amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrAtomicity indicates the store aborted partway through a
	// multi-step mutation; no partial state was committed.
	ErrAtomicity = errors.New("ledger mutation aborted")
)
