package expense

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/export"
	"github.com/rfmendes/contas/internal/http/middleware"
	"github.com/rfmendes/contas/internal/http/respond"
	"github.com/rfmendes/contas/internal/ledger"
)

type Handler struct {
	svc       *ledger.Service
	export    *export.Service
	maxUpload int64
}

func NewHandler(svc *ledger.Service, exportSvc *export.Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, export: exportSvc, maxUpload: maxUpload}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/export", h.exportCSV)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/receipt", h.uploadReceipt)
	r.Get("/{id}/receipt", h.downloadReceipt)
	r.Delete("/{id}/receipt", h.deleteReceipt)
}

type createExpenseRequest struct {
	Description string      `json:"description"`
	Amount      int64       `json:"amount"`
	Type        ledger.Type `json:"type,omitempty"`
	Date        time.Time   `json:"date"`
	CategoryID  uuid.UUID   `json:"categoryId"`
	AccountID   uuid.UUID   `json:"accountId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Type == "" {
		req.Type = ledger.TypeExpense
	}

	tx, err := h.svc.Create(r.Context(), ledger.CreateParams{
		UserID:      middleware.UserID(r.Context()),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        req.Date,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.svc.List(r.Context(), middleware.UserID(r.Context()), filter)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := h.svc.Get(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

type updateExpenseRequest struct {
	Description *string    `json:"description,omitempty"`
	Amount      *int64     `json:"amount,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	AccountID   *uuid.UUID `json:"accountId,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.Update(r.Context(), middleware.UserID(r.Context()), id, ledger.UpdateParams{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
	})
	if err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
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

func (h *Handler) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("receipt")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "missing receipt file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.svc.AttachReceipt(r.Context(), middleware.UserID(r.Context()), id, file, contentType); err != nil {
		respond.FromError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]string{"message": "receipt stored"})
}

func (h *Handler) downloadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	rc, contentType, err := h.svc.OpenReceipt(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; nothing left to do but note it.
		respond.FromError(w, err)
	}
}

func (h *Handler) deleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.DeleteReceipt(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		respond.FromError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.export.CSV(r.Context(), middleware.UserID(r.Context()), filter)
	if err != nil {
		respond.FromError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.Write(data)
}

func parseFilter(r *http.Request) (ledger.ListFilter, error) {
	var filter ledger.ListFilter

	if s := r.URL.Query().Get("accountId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return filter, err
		}

		filter.AccountID = &id
	}

	if s := r.URL.Query().Get("startDate"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, err
		}

		filter.StartDate = &t
	}

	if s := r.URL.Query().Get("endDate"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, err
		}

		filter.EndDate = &t
	}

	return filter, nil
}
