package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/ledger"
)

// Store is the Postgres ledger repository. All mutations run through
// unitTx so transaction rows and balance deltas commit together; the
// database's isolation serializes concurrent deltas on one account.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	t.id, t.user_id, t.account_id, t.category_id, t.description, t.amount, t.type, t.date,
	t.created_at, t.updated_at
`

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.CategoryID, &tx.Description, &tx.Amount, &typeStr, &tx.Date,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = ledger.Type(typeStr)

	return &tx, nil
}

func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger unit: %w", err)
	}

	return &unitTx{tx: dbTx}, nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.user_id = $1`

	args := []any{userID}
	argIdx := 2

	if filter.AccountID != nil {
		query += fmt.Sprintf(" AND t.account_id = $%d", argIdx)

		args = append(args, *filter.AccountID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) AccountSnapshot(ctx context.Context, accountID, userID uuid.UUID) (*ledger.AccountSnapshot, error) {
	query := `
		SELECT id, name, initial_balance, balance
		FROM accounts
		WHERE id = $1 AND user_id = $2
	`

	var snap ledger.AccountSnapshot

	err := s.db.QueryRowContext(ctx, query, accountID, userID).
		Scan(&snap.ID, &snap.Name, &snap.InitialBalance, &snap.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting account snapshot: %w", err)
	}

	return &snap, nil
}

// signedSumExpr applies the sign convention in SQL so the
// reconstruction paths use the exact mapping the engine applies to the
// cache.
const signedSumExpr = `COALESCE(SUM(CASE WHEN type IN ('INCOME', 'TRANSFER_IN') THEN amount ELSE -amount END), 0)`

func (s *Store) SignedSum(ctx context.Context, accountID uuid.UUID, start, end *time.Time) (int64, error) {
	query := `SELECT ` + signedSumExpr + ` FROM transactions WHERE account_id = $1`

	args := []any{accountID}
	argIdx := 2

	if start != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, *start)
		argIdx++
	}

	if end != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, *end)
		argIdx++
	}

	var sum int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing transactions: %w", err)
	}

	return sum, nil
}

func (s *Store) SignedSumAfter(ctx context.Context, accountID uuid.UUID, after time.Time) (int64, error) {
	query := `SELECT ` + signedSumExpr + ` FROM transactions WHERE account_id = $1 AND date > $2`

	var sum int64
	if err := s.db.QueryRowContext(ctx, query, accountID, after).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing transactions after: %w", err)
	}

	return sum, nil
}

type unitTx struct {
	tx *sql.Tx
}

func (u *unitTx) Commit() error   { return u.tx.Commit() }
func (u *unitTx) Rollback() error { return u.tx.Rollback() }

func (u *unitTx) Account(ctx context.Context, accountID, userID uuid.UUID) (*ledger.AccountRef, error) {
	query := `SELECT id, name FROM accounts WHERE id = $1 AND user_id = $2`

	var ref ledger.AccountRef
	if err := u.tx.QueryRowContext(ctx, query, accountID, userID).Scan(&ref.ID, &ref.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrInvalidReference
		}

		return nil, fmt.Errorf("checking account reference: %w", err)
	}

	return &ref, nil
}

func (u *unitTx) Category(ctx context.Context, categoryID, userID uuid.UUID) error {
	query := `SELECT 1 FROM categories WHERE id = $1 AND user_id = $2`

	var one int
	if err := u.tx.QueryRowContext(ctx, query, categoryID, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrInvalidReference
		}

		return fmt.Errorf("checking category reference: %w", err)
	}

	return nil
}

// EnsureCategory is the atomic find-or-create against the unique
// (user_id, name) constraint; the no-op DO UPDATE makes RETURNING
// yield the existing row's id on conflict.
func (u *unitTx) EnsureCategory(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error) {
	query := `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id uuid.UUID
	if err := u.tx.QueryRowContext(ctx, query, userID, name).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("upserting category: %w", err)
	}

	return id, nil
}

func (u *unitTx) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, account_id, category_id, description, amount, type, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		tx.UserID,
		tx.AccountID,
		tx.CategoryID,
		tx.Description,
		tx.Amount,
		tx.Type,
		tx.Date,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

// UpdateTransaction never writes type: it is immutable after creation.
func (u *unitTx) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $1, category_id = $2, description = $3, amount = $4, date = $5, updated_at = NOW()
		WHERE id = $6
	`

	_, err := u.tx.ExecContext(ctx, query,
		tx.AccountID,
		tx.CategoryID,
		tx.Description,
		tx.Amount,
		tx.Date,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (u *unitTx) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if _, err := u.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

// AdjustBalance expresses the change as a relative delta applied by
// the database, never as read-then-write in request code.
func (u *unitTx) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	query := `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`

	if _, err := u.tx.ExecContext(ctx, query, delta, accountID); err != nil {
		return fmt.Errorf("adjusting account balance: %w", err)
	}

	return nil
}
