package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// Handler exposes order endpoints. Access control happens in the guard chain
// before these run; handlers only read and respond.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type orderResponse struct {
	ID         int64  `json:"id"`
	StoreID    int64  `json:"store_id"`
	CustomerID int64  `json:"customer_id"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
}

// Get returns one order. The route is ownership-guarded.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "order id must be numeric")
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// ListForStore returns a store's orders. The route is store-role guarded.
func (h *Handler) ListForStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "store id must be numeric")
		return
	}
	result, err := h.service.ListForStore(r.Context(), storeID)
	if err != nil {
		h.logger.Error("list store orders", slog.Int64("store_id", storeID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	responses := make([]orderResponse, len(result))
	for i, o := range result {
		responses[i] = toOrderResponse(&o)
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func toOrderResponse(o *Order) orderResponse {
	return orderResponse{ID: o.ID, StoreID: o.StoreID, CustomerID: o.CustomerID, Status: string(o.Status), TotalCents: o.TotalCents}
}
