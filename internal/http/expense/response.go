package expense

import (
	"time"

	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/ledger"
)

type transactionResponse struct {
	ID          uuid.UUID   `json:"id"`
	AccountID   uuid.UUID   `json:"accountId"`
	CategoryID  uuid.UUID   `json:"categoryId"`
	Description string      `json:"description"`
	Amount      int64       `json:"amount"`
	Type        ledger.Type `json:"type"`
	Date        time.Time   `json:"date"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		CategoryID:  tx.CategoryID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
