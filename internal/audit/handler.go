package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// Handler exposes the decision audit trail to site admins.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

type decisionResponse struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Controller string    `json:"controller"`
	Handler    string    `json:"handler"`
	Allowed    bool      `json:"allowed"`
	Kind       string    `json:"kind,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

// Recent lists the newest recorded decisions.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	entries, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list decisions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	responses := make([]decisionResponse, len(entries))
	for i, e := range entries {
		responses[i] = decisionResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			Controller: e.Controller,
			Handler:    e.Handler,
			Allowed:    e.Allowed,
			Kind:       e.Kind,
			Reason:     e.Reason,
			DecidedAt:  e.DecidedAt,
		}
	}
	httpx.JSON(w, http.StatusOK, responses)
}
