package ledger

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=engine.go -destination=repository_mock.go -package=ledger

// Repository is the persistence boundary of the ledger. Reads run
// outside any unit; every mutation goes through a Tx so transaction
// rows and balance deltas commit together.
type Repository interface {
	Begin(ctx context.Context) (Tx, error)

	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error)

	AccountSnapshot(ctx context.Context, accountID, userID uuid.UUID) (*AccountSnapshot, error)
	// SignedSum sums SignedAmount over the account's transactions with
	// inclusive date bounds; nil bounds are unbounded.
	SignedSum(ctx context.Context, accountID uuid.UUID, start, end *time.Time) (int64, error)
	// SignedSumAfter sums SignedAmount over transactions dated strictly
	// after the given instant.
	SignedSumAfter(ctx context.Context, accountID uuid.UUID, after time.Time) (int64, error)
}

// Tx is one atomic unit against the store. Account and Category return
// ErrInvalidReference when the row does not exist or belongs to another
// user, before any mutation executes.
type Tx interface {
	Account(ctx context.Context, accountID, userID uuid.UUID) (*AccountRef, error)
	Category(ctx context.Context, categoryID, userID uuid.UUID) error
	// EnsureCategory atomically finds or creates a category by
	// (owner, name) and returns its id.
	EnsureCategory(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error)

	InsertTransaction(ctx context.Context, tx *Transaction) error
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	// AdjustBalance applies a relative delta to the account's cached
	// balance inside the unit. Never expressed as read-then-write.
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error

	Commit() error
	Rollback() error
}

// Engine owns the translation of transaction lifecycle events into
// exactly-once balance deltas. All arithmetic funnels through
// SignedAmount so the cached-update and reconstruction paths can never
// diverge.
type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// ApplyCreate persists tx and increments the referenced account's
// cached balance by its signed amount, as one unit.
func (e *Engine) ApplyCreate(ctx context.Context, tx *Transaction) error {
	utx, err := e.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit: %w", err)
	}
	defer utx.Rollback()

	if _, err := utx.Account(ctx, tx.AccountID, tx.UserID); err != nil {
		return err
	}

	if err := utx.Category(ctx, tx.CategoryID, tx.UserID); err != nil {
		return err
	}

	if err := utx.InsertTransaction(ctx, tx); err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	if err := utx.AdjustBalance(ctx, tx.AccountID, SignedAmount(tx.Type, tx.Amount)); err != nil {
		return fmt.Errorf("adjusting balance: %w", err)
	}

	return commit(utx)
}

// UpdateParams are the mutable fields of a transaction. Type is
// deliberately absent: the delta-reversal algorithm depends on it
// never changing after creation.
type UpdateParams struct {
	Description *string
	Amount      *int64
	Date        *time.Time
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
}

// ApplyUpdate reverts the delta the old row applied and reapplies the
// new one, as one unit. A same-account edit collapses to a single net
// adjustment; a cross-account edit reverts on the old account and
// reapplies on the new one.
func (e *Engine) ApplyUpdate(ctx context.Context, old *Transaction, p UpdateParams) (*Transaction, error) {
	updated := *old
	if p.Description != nil {
		updated.Description = *p.Description
	}

	if p.Amount != nil {
		if *p.Amount <= 0 {
			return nil, ErrInvalidAmount
		}

		updated.Amount = *p.Amount
	}

	if p.Date != nil {
		updated.Date = *p.Date
	}

	if p.CategoryID != nil {
		updated.CategoryID = *p.CategoryID
	}

	if p.AccountID != nil {
		updated.AccountID = *p.AccountID
	}

	utx, err := e.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning unit: %w", err)
	}
	defer utx.Rollback()

	// Re-validate anything newly referenced before touching balances.
	if updated.AccountID != old.AccountID {
		if _, err := utx.Account(ctx, updated.AccountID, old.UserID); err != nil {
			return nil, err
		}
	}

	if updated.CategoryID != old.CategoryID {
		if err := utx.Category(ctx, updated.CategoryID, old.UserID); err != nil {
			return nil, err
		}
	}

	if err := utx.UpdateTransaction(ctx, &updated); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	revert := -SignedAmount(old.Type, old.Amount)
	reapply := SignedAmount(old.Type, updated.Amount)

	if updated.AccountID == old.AccountID {
		if net := revert + reapply; net != 0 {
			if err := utx.AdjustBalance(ctx, old.AccountID, net); err != nil {
				return nil, fmt.Errorf("adjusting balance: %w", err)
			}
		}
	} else {
		if err := utx.AdjustBalance(ctx, old.AccountID, revert); err != nil {
			return nil, fmt.Errorf("reverting old account balance: %w", err)
		}

		if err := utx.AdjustBalance(ctx, updated.AccountID, reapply); err != nil {
			return nil, fmt.Errorf("applying new account balance: %w", err)
		}
	}

	if err := commit(utx); err != nil {
		return nil, err
	}

	return &updated, nil
}

// ApplyDelete reverts the transaction's delta and removes its row, as
// one unit. Receipt cleanup is the caller's concern and is explicitly
// outside the unit.
func (e *Engine) ApplyDelete(ctx context.Context, tx *Transaction) error {
	utx, err := e.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit: %w", err)
	}
	defer utx.Rollback()

	if err := utx.AdjustBalance(ctx, tx.AccountID, -SignedAmount(tx.Type, tx.Amount)); err != nil {
		return fmt.Errorf("reverting balance: %w", err)
	}

	if err := utx.DeleteTransaction(ctx, tx.ID); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return commit(utx)
}

// ApplyTransfer posts both legs and both balance deltas as one unit.
// The reserved category is resolved inside the unit so concurrent
// first transfers cannot race its creation. Empty leg descriptions
// default to the counterparty account's name.
func (e *Engine) ApplyTransfer(ctx context.Context, out, in *Transaction) error {
	utx, err := e.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit: %w", err)
	}
	defer utx.Rollback()

	src, err := utx.Account(ctx, out.AccountID, out.UserID)
	if err != nil {
		return err
	}

	dst, err := utx.Account(ctx, in.AccountID, in.UserID)
	if err != nil {
		return err
	}

	categoryID, err := utx.EnsureCategory(ctx, out.UserID, TransferCategory)
	if err != nil {
		return fmt.Errorf("resolving transfer category: %w", err)
	}

	out.CategoryID = categoryID
	in.CategoryID = categoryID

	if out.Description == "" {
		out.Description = "Transfer to " + dst.Name
	}

	if in.Description == "" {
		in.Description = "Transfer from " + src.Name
	}

	if err := utx.InsertTransaction(ctx, out); err != nil {
		return fmt.Errorf("inserting outgoing leg: %w", err)
	}

	if err := utx.InsertTransaction(ctx, in); err != nil {
		return fmt.Errorf("inserting incoming leg: %w", err)
	}

	// Deltas in ascending account-id order so two opposite transfers
	// cannot deadlock on the row locks.
	legs := []*Transaction{out, in}
	if bytes.Compare(in.AccountID[:], out.AccountID[:]) < 0 {
		legs[0], legs[1] = in, out
	}

	for _, leg := range legs {
		if err := utx.AdjustBalance(ctx, leg.AccountID, SignedAmount(leg.Type, leg.Amount)); err != nil {
			return fmt.Errorf("adjusting balance: %w", err)
		}
	}

	return commit(utx)
}

// Reconstruct recomputes a balance from history, ignoring the cache:
// initial balance plus the signed sum of transactions, optionally
// restricted to an inclusive date range.
func (e *Engine) Reconstruct(ctx context.Context, accountID, userID uuid.UUID, start, end *time.Time) (int64, error) {
	snap, err := e.repo.AccountSnapshot(ctx, accountID, userID)
	if err != nil {
		return 0, err
	}

	sum, err := e.repo.SignedSum(ctx, accountID, start, end)
	if err != nil {
		return 0, fmt.Errorf("summing transactions: %w", err)
	}

	return snap.InitialBalance + sum, nil
}

// OpeningClosing derives the period's closing balance by rolling the
// cached balance back past everything after the range, and the opening
// balance by further removing the range's own net. The cache is read
// only as the absolute anchor; the reported figures come from history.
func (e *Engine) OpeningClosing(ctx context.Context, accountID, userID uuid.UUID, start, end time.Time) (*PeriodBalance, error) {
	snap, err := e.repo.AccountSnapshot(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	netAfter, err := e.repo.SignedSumAfter(ctx, accountID, end)
	if err != nil {
		return nil, fmt.Errorf("summing transactions after range: %w", err)
	}

	netWithin, err := e.repo.SignedSum(ctx, accountID, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("summing transactions in range: %w", err)
	}

	closing := snap.Balance - netAfter

	return &PeriodBalance{
		AccountID: accountID,
		Opening:   closing - netWithin,
		Closing:   closing,
		Net:       netWithin,
	}, nil
}

func commit(utx Tx) error {
	if err := utx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrAtomicity, err)
	}

	return nil
}
