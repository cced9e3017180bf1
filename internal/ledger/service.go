package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ReceiptStore is the external binary object store holding uploaded
// receipts, keyed by owner and transaction id. Its failures never roll
// back ledger state.
type ReceiptStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	// Delete is idempotent: removing a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// Service is the user-facing transaction orchestration: ownership
// enforcement and receipt coordination, with all balance arithmetic
// delegated to the engine.
type Service struct {
	repo     Repository
	engine   *Engine
	receipts ReceiptStore
}

func NewService(repo Repository, engine *Engine, receipts ReceiptStore) *Service {
	return &Service{repo: repo, engine: engine, receipts: receipts}
}

type CreateParams struct {
	UserID      uuid.UUID
	AccountID   uuid.UUID
	CategoryID  uuid.UUID
	Description string
	Amount      int64
	Type        Type
	Date        time.Time
}

// Create posts a new income or expense. Transfer legs are posted only
// by the transfer service so they always come in balanced pairs.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Transaction, error) {
	if p.Type != TypeIncome && p.Type != TypeExpense {
		return nil, ErrInvalidType
	}

	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx := &Transaction{
		UserID:      p.UserID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
		Date:        p.Date,
	}

	if err := s.engine.ApplyCreate(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// Get returns the transaction when it exists and belongs to userID.
// A foreign transaction reports ErrAccessDenied, not ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.UserID != userID {
		return nil, ErrAccessDenied
	}

	return tx, nil
}

// List returns the user's transactions, optionally narrowed by account
// and an inclusive transaction-date range. The end bound is extended
// to the last instant of its calendar day.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	if filter.EndDate != nil {
		end := endOfDay(*filter.EndDate)
		filter.EndDate = &end
	}

	return s.repo.ListTransactions(ctx, userID, filter)
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, p UpdateParams) (*Transaction, error) {
	old, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return s.engine.ApplyUpdate(ctx, old, p)
}

// Delete removes the transaction and reverts its balance delta, then
// releases any stored receipt. Receipt release is best effort: a
// failure is logged and never blocks the ledger deletion.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	old, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.engine.ApplyDelete(ctx, old); err != nil {
		return err
	}

	if err := s.receipts.Delete(ctx, receiptKey(userID, id)); err != nil {
		slog.Warn("releasing receipt after transaction delete", "transaction_id", id, "error", err)
	}

	return nil
}

// AttachReceipt stores a receipt for an existing, owned transaction.
func (s *Service) AttachReceipt(ctx context.Context, userID, id uuid.UUID, r io.Reader, contentType string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.receipts.Put(ctx, receiptKey(userID, id), r, contentType); err != nil {
		return fmt.Errorf("storing receipt: %w", err)
	}

	return nil
}

// OpenReceipt streams the stored receipt and its content type.
func (s *Service) OpenReceipt(ctx context.Context, userID, id uuid.UUID) (io.ReadCloser, string, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, "", err
	}

	return s.receipts.Get(ctx, receiptKey(userID, id))
}

// DeleteReceipt removes the stored receipt. Unlike the cleanup on
// transaction delete, an explicit removal surfaces store failures.
func (s *Service) DeleteReceipt(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.receipts.Delete(ctx, receiptKey(userID, id)); err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}

	return nil
}

func receiptKey(userID, txID uuid.UUID) string {
	return userID.String() + "/" + txID.String()
}
