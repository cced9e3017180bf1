package account

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/account"
	"github.com/rfmendes/contas/internal/http/middleware"
	"github.com/rfmendes/contas/internal/http/respond"
	"github.com/rfmendes/contas/internal/ledger"
)

type Handler struct {
	svc       *account.Service
	engine    *ledger.Engine
	transfers *ledger.Transfers
}

func NewHandler(svc *account.Service, engine *ledger.Engine, transfers *ledger.Transfers) *Handler {
	return &Handler{svc: svc, engine: engine, transfers: transfers}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/transfer", h.transfer)
	r.Get("/balance", h.balances)
	r.Get("/balance/{id}", h.balance)
	r.Post("/balances", h.periodBalances)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createAccountRequest struct {
	Name           string       `json:"name"`
	Type           account.Type `json:"type"`
	InitialBalance int64        `json:"initialBalance"`
	Color          string       `json:"color,omitempty"`
	Icon           string       `json:"icon,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	a, err := h.svc.Create(r.Context(), account.CreateParams{
		UserID:         middleware.UserID(r.Context()),
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
		Color:          req.Color,
		Icon:           req.Icon,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(accounts))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	a, err := h.svc.Get(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}

type updateAccountRequest struct {
	Name  *string       `json:"name,omitempty"`
	Type  *account.Type `json:"type,omitempty"`
	Color *string       `json:"color,omitempty"`
	Icon  *string       `json:"icon,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Update(r.Context(), middleware.UserID(r.Context()), id, account.UpdateParams{
		Name:  req.Name,
		Type:  req.Type,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		respond.FromError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	SourceAccountID      uuid.UUID `json:"sourceAccountId"`
	DestinationAccountID uuid.UUID `json:"destinationAccountId"`
	Amount               int64     `json:"amount"`
	Date                 time.Time `json:"date"`
	Description          string    `json:"description,omitempty"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, in, err := h.transfers.Transfer(r.Context(), ledger.TransferParams{
		UserID:               middleware.UserID(r.Context()),
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Date:                 req.Date,
		Description:          req.Description,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toTransferResponse(out, in))
}

// balances reports the cache-independent reconstructed balance of
// every account the user owns.
func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	accounts, err := h.svc.List(r.Context(), userID)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	resp := make([]balanceResponse, 0, len(accounts))

	for _, a := range accounts {
		balance, err := h.engine.Reconstruct(r.Context(), a.ID, userID, nil, nil)
		if err != nil {
			respond.FromError(w, err)
			return
		}

		resp = append(resp, balanceResponse{AccountID: a.ID, Name: a.Name, Balance: balance})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := middleware.UserID(r.Context())

	start, end, ok, err := parseRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if !ok {
		balance, err := h.engine.Reconstruct(r.Context(), id, userID, nil, nil)
		if err != nil {
			respond.FromError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, balanceResponse{AccountID: id, Balance: balance})

		return
	}

	period, err := h.engine.OpeningClosing(r.Context(), id, userID, start, end)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPeriodResponse(period))
}

type periodBalancesRequest struct {
	AccountIDs []uuid.UUID `json:"accountIds"`
	StartDate  string      `json:"startDate"`
	EndDate    string      `json:"endDate"`
}

func (h *Handler) periodBalances(w http.ResponseWriter, r *http.Request) {
	var req periodBalancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end, ok, err := parseRange(req.StartDate, req.EndDate)
	if err != nil || !ok {
		respond.Error(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	userID := middleware.UserID(r.Context())
	resp := make([]periodBalanceResponse, 0, len(req.AccountIDs))

	for _, accountID := range req.AccountIDs {
		period, err := h.engine.OpeningClosing(r.Context(), accountID, userID, start, end)
		if err != nil {
			respond.FromError(w, err)
			return
		}

		resp = append(resp, toPeriodResponse(period))
	}

	respond.JSON(w, http.StatusOK, resp)
}

// parseRange parses an inclusive date range; the end bound is extended
// to the last instant of its day. ok is false when both are absent.
func parseRange(startStr, endStr string) (start, end time.Time, ok bool, err error) {
	if startStr == "" && endStr == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	start, err = time.Parse(time.DateOnly, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	end, err = time.Parse(time.DateOnly, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	end = end.Add(24*time.Hour - time.Nanosecond)

	return start, end, true, nil
}
