package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/account"
	"github.com/rfmendes/contas/internal/ledger"
)

type accountResponse struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Type           account.Type `json:"type"`
	InitialBalance int64        `json:"initialBalance"`
	Balance        int64        `json:"balance"`
	Color          string       `json:"color,omitempty"`
	Icon           string       `json:"icon,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      *time.Time   `json:"updatedAt,omitempty"`
}

func toResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		InitialBalance: a.InitialBalance,
		Balance:        a.Balance,
		Color:          a.Color,
		Icon:           a.Icon,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toResponseList(accounts []*account.Account) []accountResponse {
	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toResponse(a)
	}

	return resp
}

type balanceResponse struct {
	AccountID uuid.UUID `json:"accountId"`
	Name      string    `json:"name,omitempty"`
	Balance   int64     `json:"balance"`
}

type periodBalanceResponse struct {
	AccountID uuid.UUID `json:"accountId"`
	Opening   int64     `json:"opening"`
	Closing   int64     `json:"closing"`
	Net       int64     `json:"net"`
}

func toPeriodResponse(p *ledger.PeriodBalance) periodBalanceResponse {
	return periodBalanceResponse{
		AccountID: p.AccountID,
		Opening:   p.Opening,
		Closing:   p.Closing,
		Net:       p.Net,
	}
}

type transferLegResponse struct {
	ID          uuid.UUID   `json:"id"`
	AccountID   uuid.UUID   `json:"accountId"`
	Type        ledger.Type `json:"type"`
	Amount      int64       `json:"amount"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
}

type transferResponse struct {
	Outgoing transferLegResponse `json:"outgoing"`
	Incoming transferLegResponse `json:"incoming"`
}

func toTransferResponse(out, in *ledger.Transaction) transferResponse {
	leg := func(tx *ledger.Transaction) transferLegResponse {
		return transferLegResponse{
			ID:          tx.ID,
			AccountID:   tx.AccountID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Description: tx.Description,
			Date:        tx.Date,
		}
	}

	return transferResponse{Outgoing: leg(out), Incoming: leg(in)}
}
