package ledger_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/ledger"
)

// fakeStore is an in-memory Repository with real commit semantics:
// mutations stage on the unit and apply only on Commit, so atomicity
// behavior is observable in tests.
type fakeStore struct {
	accounts   map[uuid.UUID]*fakeAccount
	categories map[uuid.UUID]uuid.UUID // category id -> owner
	catIDs     map[catKey]uuid.UUID
	txs        map[uuid.UUID]*ledger.Transaction
	failCommit bool
}

type fakeAccount struct {
	userID  uuid.UUID
	name    string
	initial int64
	balance int64
}

type catKey struct {
	userID uuid.UUID
	name   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:   make(map[uuid.UUID]*fakeAccount),
		categories: make(map[uuid.UUID]uuid.UUID),
		catIDs:     make(map[catKey]uuid.UUID),
		txs:        make(map[uuid.UUID]*ledger.Transaction),
	}
}

func (f *fakeStore) addAccount(userID uuid.UUID, name string, initial int64) uuid.UUID {
	id := uuid.New()
	f.accounts[id] = &fakeAccount{userID: userID, name: name, initial: initial, balance: initial}

	return id
}

func (f *fakeStore) addCategory(userID uuid.UUID, name string) uuid.UUID {
	key := catKey{userID: userID, name: name}
	if id, ok := f.catIDs[key]; ok {
		return id
	}

	id := uuid.New()
	f.categories[id] = userID
	f.catIDs[key] = id

	return id
}

func (f *fakeStore) balance(accountID uuid.UUID) int64 {
	return f.accounts[accountID].balance
}

func (f *fakeStore) Begin(ctx context.Context) (ledger.Tx, error) {
	return &fakeTx{f: f, deltas: make(map[uuid.UUID]int64)}, nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	cp := *tx

	return &cp, nil
}

func (f *fakeStore) ListTransactions(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	var out []*ledger.Transaction

	for _, tx := range f.txs {
		if tx.UserID != userID {
			continue
		}

		if filter.AccountID != nil && tx.AccountID != *filter.AccountID {
			continue
		}

		if filter.StartDate != nil && tx.Date.Before(*filter.StartDate) {
			continue
		}

		if filter.EndDate != nil && tx.Date.After(*filter.EndDate) {
			continue
		}

		cp := *tx
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out, nil
}

func (f *fakeStore) AccountSnapshot(ctx context.Context, accountID, userID uuid.UUID) (*ledger.AccountSnapshot, error) {
	a, ok := f.accounts[accountID]
	if !ok || a.userID != userID {
		return nil, ledger.ErrNotFound
	}

	return &ledger.AccountSnapshot{
		ID:             accountID,
		Name:           a.name,
		InitialBalance: a.initial,
		Balance:        a.balance,
	}, nil
}

func (f *fakeStore) SignedSum(ctx context.Context, accountID uuid.UUID, start, end *time.Time) (int64, error) {
	var sum int64

	for _, tx := range f.txs {
		if tx.AccountID != accountID {
			continue
		}

		if start != nil && tx.Date.Before(*start) {
			continue
		}

		if end != nil && tx.Date.After(*end) {
			continue
		}

		sum += ledger.SignedAmount(tx.Type, tx.Amount)
	}

	return sum, nil
}

func (f *fakeStore) SignedSumAfter(ctx context.Context, accountID uuid.UUID, after time.Time) (int64, error) {
	var sum int64

	for _, tx := range f.txs {
		if tx.AccountID == accountID && tx.Date.After(after) {
			sum += ledger.SignedAmount(tx.Type, tx.Amount)
		}
	}

	return sum, nil
}

type fakeTx struct {
	f       *fakeStore
	deltas  map[uuid.UUID]int64
	inserts []*ledger.Transaction
	updates []*ledger.Transaction
	deletes []uuid.UUID
}

func (u *fakeTx) Account(ctx context.Context, accountID, userID uuid.UUID) (*ledger.AccountRef, error) {
	a, ok := u.f.accounts[accountID]
	if !ok || a.userID != userID {
		return nil, ledger.ErrInvalidReference
	}

	return &ledger.AccountRef{ID: accountID, Name: a.name}, nil
}

func (u *fakeTx) Category(ctx context.Context, categoryID, userID uuid.UUID) error {
	owner, ok := u.f.categories[categoryID]
	if !ok || owner != userID {
		return ledger.ErrInvalidReference
	}

	return nil
}

func (u *fakeTx) EnsureCategory(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error) {
	return u.f.addCategory(userID, name), nil
}

func (u *fakeTx) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()

	cp := *tx
	u.inserts = append(u.inserts, &cp)

	return nil
}

func (u *fakeTx) UpdateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	cp := *tx
	u.updates = append(u.updates, &cp)

	return nil
}

func (u *fakeTx) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	u.deletes = append(u.deletes, id)
	return nil
}

func (u *fakeTx) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	u.deltas[accountID] += delta
	return nil
}

func (u *fakeTx) Commit() error {
	if u.f.failCommit {
		return errors.New("simulated commit failure")
	}

	for _, tx := range u.inserts {
		u.f.txs[tx.ID] = tx
	}

	for _, tx := range u.updates {
		u.f.txs[tx.ID] = tx
	}

	for _, id := range u.deletes {
		delete(u.f.txs, id)
	}

	for accountID, delta := range u.deltas {
		u.f.accounts[accountID].balance += delta
	}

	return nil
}

func (u *fakeTx) Rollback() error { return nil }
