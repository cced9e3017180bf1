package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Transfers moves value between two accounts of the same user as one
// atomic, symmetric pair of postings.
type Transfers struct {
	engine *Engine
}

func NewTransfers(engine *Engine) *Transfers {
	return &Transfers{engine: engine}
}

type TransferParams struct {
	UserID               uuid.UUID
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               int64
	Date                 time.Time
	Description          string
}

// Transfer posts a TRANSFER_OUT on the source and a TRANSFER_IN on the
// destination, both of the same amount, in a single atomic unit. No
// partial transfer is ever observable.
func (t *Transfers) Transfer(ctx context.Context, p TransferParams) (out, in *Transaction, err error) {
	if p.SourceAccountID == p.DestinationAccountID || p.Amount <= 0 {
		return nil, nil, ErrInvalidTransfer
	}

	out = &Transaction{
		UserID:      p.UserID,
		AccountID:   p.SourceAccountID,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        TypeTransferOut,
		Date:        p.Date,
	}

	in = &Transaction{
		UserID:      p.UserID,
		AccountID:   p.DestinationAccountID,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        TypeTransferIn,
		Date:        p.Date,
	}

	if err := t.engine.ApplyTransfer(ctx, out, in); err != nil {
		return nil, nil, err
	}

	return out, in, nil
}
