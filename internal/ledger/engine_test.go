package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfmendes/contas/internal/ledger"
)

func newTx(userID, accountID, categoryID uuid.UUID, amount int64, txType ledger.Type, date time.Time) *ledger.Transaction {
	return &ledger.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: "test",
		Amount:      amount,
		Type:        txType,
		Date:        date,
	}
}

// checkInvariant asserts cached balance == initial + signed sum for
// the account, via the cache-independent reconstruction path.
func checkInvariant(t *testing.T, engine *ledger.Engine, store *fakeStore, accountID, userID uuid.UUID) {
	t.Helper()

	reconstructed, err := engine.Reconstruct(context.Background(), accountID, userID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, store.balance(accountID), reconstructed)
}

func TestEngine_ApplyCreate(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 1000)
	categoryID := store.addCategory(userID, "Food")

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	err := engine.ApplyCreate(context.Background(), newTx(userID, accountID, categoryID, 50, ledger.TypeExpense, date))
	require.NoError(t, err)
	assert.Equal(t, int64(950), store.balance(accountID))

	err = engine.ApplyCreate(context.Background(), newTx(userID, accountID, categoryID, 200, ledger.TypeIncome, date))
	require.NoError(t, err)
	assert.Equal(t, int64(1150), store.balance(accountID))

	checkInvariant(t, engine, store, accountID, userID)
}

func TestEngine_ApplyCreate_ForeignReferences(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	otherID := uuid.New()
	ownAccount := store.addAccount(userID, "Checking", 1000)
	ownCategory := store.addCategory(userID, "Food")
	foreignAccount := store.addAccount(otherID, "Theirs", 500)
	foreignCategory := store.addCategory(otherID, "Their Food")

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	err := engine.ApplyCreate(context.Background(), newTx(userID, foreignAccount, ownCategory, 50, ledger.TypeExpense, date))
	assert.ErrorIs(t, err, ledger.ErrInvalidReference)

	err = engine.ApplyCreate(context.Background(), newTx(userID, ownAccount, foreignCategory, 50, ledger.TypeExpense, date))
	assert.ErrorIs(t, err, ledger.ErrInvalidReference)

	// Nothing was mutated.
	assert.Empty(t, store.txs)
	assert.Equal(t, int64(1000), store.balance(ownAccount))
	assert.Equal(t, int64(500), store.balance(foreignAccount))
}

func TestEngine_ApplyUpdate_NetZero(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 1000)
	categoryID := store.addCategory(userID, "Food")

	tx := newTx(userID, accountID, categoryID, 50, ledger.TypeExpense, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, engine.ApplyCreate(context.Background(), tx))
	require.Equal(t, int64(950), store.balance(accountID))

	amount := int64(50)

	_, err := engine.ApplyUpdate(context.Background(), tx, ledger.UpdateParams{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, int64(950), store.balance(accountID))
	checkInvariant(t, engine, store, accountID, userID)
}

func TestEngine_ApplyUpdate_AmountChange(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 1000)
	categoryID := store.addCategory(userID, "Food")

	tx := newTx(userID, accountID, categoryID, 50, ledger.TypeExpense, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, engine.ApplyCreate(context.Background(), tx))

	amount := int64(80)

	updated, err := engine.ApplyUpdate(context.Background(), tx, ledger.UpdateParams{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, int64(80), updated.Amount)
	assert.Equal(t, ledger.TypeExpense, updated.Type)
	assert.Equal(t, int64(920), store.balance(accountID))
	checkInvariant(t, engine, store, accountID, userID)
}

func TestEngine_ApplyUpdate_CrossAccountMove(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountA := store.addAccount(userID, "A", 1000)
	accountB := store.addAccount(userID, "B", 2000)
	categoryID := store.addCategory(userID, "Food")

	tx := newTx(userID, accountA, categoryID, 50, ledger.TypeExpense, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, engine.ApplyCreate(context.Background(), tx))
	require.Equal(t, int64(950), store.balance(accountA))

	totalBefore := store.balance(accountA) + store.balance(accountB)

	_, err := engine.ApplyUpdate(context.Background(), tx, ledger.UpdateParams{AccountID: &accountB})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), store.balance(accountA))
	assert.Equal(t, int64(1950), store.balance(accountB))
	assert.Equal(t, totalBefore, store.balance(accountA)+store.balance(accountB))

	checkInvariant(t, engine, store, accountA, userID)
	checkInvariant(t, engine, store, accountB, userID)
}

func TestEngine_ApplyUpdate_ForeignNewAccount(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 1000)
	foreignAccount := store.addAccount(uuid.New(), "Theirs", 500)
	categoryID := store.addCategory(userID, "Food")

	tx := newTx(userID, accountID, categoryID, 50, ledger.TypeExpense, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, engine.ApplyCreate(context.Background(), tx))

	_, err := engine.ApplyUpdate(context.Background(), tx, ledger.UpdateParams{AccountID: &foreignAccount})
	assert.ErrorIs(t, err, ledger.ErrInvalidReference)

	assert.Equal(t, int64(950), store.balance(accountID))
	assert.Equal(t, int64(500), store.balance(foreignAccount))
}

func TestEngine_ApplyDelete_RestoresBalance(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 1000)
	categoryID := store.addCategory(userID, "Food")

	tx := newTx(userID, accountID, categoryID, 50, ledger.TypeExpense, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, engine.ApplyCreate(context.Background(), tx))
	require.Equal(t, int64(950), store.balance(accountID))

	require.NoError(t, engine.ApplyDelete(context.Background(), tx))
	assert.Equal(t, int64(1000), store.balance(accountID))
	assert.Empty(t, store.txs)
	checkInvariant(t, engine, store, accountID, userID)
}

func TestEngine_Reconstruct_AgreesWithCache(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 250)
	categoryID := store.addCategory(userID, "Misc")

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []struct {
		amount int64
		txType ledger.Type
	}{
		{100, ledger.TypeIncome},
		{30, ledger.TypeExpense},
		{70, ledger.TypeTransferIn},
		{20, ledger.TypeTransferOut},
	}

	for i, e := range entries {
		tx := newTx(userID, accountID, categoryID, e.amount, e.txType, date.AddDate(0, 0, i))
		require.NoError(t, engine.ApplyCreate(context.Background(), tx))
	}

	checkInvariant(t, engine, store, accountID, userID)
}

func TestEngine_Reconstruct_ForeignAccount(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	accountID := store.addAccount(uuid.New(), "Theirs", 100)

	_, err := engine.Reconstruct(context.Background(), accountID, uuid.New(), nil, nil)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestEngine_OpeningClosing(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 1000)
	categoryID := store.addCategory(userID, "Misc")

	post := func(amount int64, txType ledger.Type, date time.Time) {
		t.Helper()
		require.NoError(t, engine.ApplyCreate(context.Background(), newTx(userID, accountID, categoryID, amount, txType, date)))
	}

	post(100, ledger.TypeIncome, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))   // before range
	post(40, ledger.TypeExpense, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))  // in range
	post(60, ledger.TypeIncome, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))   // in range
	post(500, ledger.TypeExpense, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) // after range

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 28, 23, 59, 59, 0, time.UTC)

	period, err := engine.OpeningClosing(context.Background(), accountID, userID, start, end)
	require.NoError(t, err)

	assert.Equal(t, int64(1100), period.Opening) // 1000 + 100
	assert.Equal(t, int64(1120), period.Closing) // opening - 40 + 60
	assert.Equal(t, int64(20), period.Net)
	assert.Equal(t, period.Net, period.Closing-period.Opening)

	// A range ending past all history anchors closing on the cache.
	futureEnd := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	period, err = engine.OpeningClosing(context.Background(), accountID, userID, start, futureEnd)
	require.NoError(t, err)
	assert.Equal(t, store.balance(accountID), period.Closing)
}

func TestEngine_CommitFailure_LeavesNoPartialState(t *testing.T) {
	store := newFakeStore()
	engine := ledger.NewEngine(store)

	userID := uuid.New()
	accountID := store.addAccount(userID, "Checking", 1000)
	categoryID := store.addCategory(userID, "Food")

	store.failCommit = true

	err := engine.ApplyCreate(context.Background(), newTx(userID, accountID, categoryID, 50, ledger.TypeExpense, time.Now()))
	require.ErrorIs(t, err, ledger.ErrAtomicity)

	assert.Empty(t, store.txs)
	assert.Equal(t, int64(1000), store.balance(accountID))
}
