package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/ledger"
)

type TransactionLister interface {
	List(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error)
}

// Service renders a user's transactions as CSV for download.
type Service struct {
	transactions TransactionLister
}

func NewService(transactions TransactionLister) *Service {
	return &Service{transactions: transactions}
}

// CSV returns the filtered transactions as a CSV document with a
// header row. Amounts carry the sign convention so the column sums to
// the period's net.
func (s *Service) CSV(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]byte, error) {
	txs, err := s.transactions.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "type", "description", "amount", "account_id", "category_id"}); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		signed := ledger.SignedAmount(tx.Type, tx.Amount)

		record := []string{
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Description,
			fmt.Sprintf("%.2f", float64(signed)/100),
			tx.AccountID.String(),
			tx.CategoryID.String(),
		}

		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing record: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}
