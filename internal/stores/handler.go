package stores

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vendora-shop/vendora/internal/authz"
	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// RoleCacheInvalidator drops cached role data for a user after a membership
// change so the next request sees it.
type RoleCacheInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

// Handler exposes store endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	roleCache RoleCacheInvalidator
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, roleCache RoleCacheInvalidator) *Handler {
	return &Handler{logger: logger, service: service, roleCache: roleCache, validator: validator.New()}
}

type createStoreForm struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
	Slug string `json:"slug" validate:"required,min=2,max=60,lowercase"`
}

type storeResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	OwnerID  int64  `json:"owner_id"`
	IsActive bool   `json:"is_active"`
}

// Get returns one store.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "store id must be numeric")
		return
	}
	store, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(store))
}

// Create registers a new store owned by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var form createStoreForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	store, err := h.service.Create(r.Context(), form.Name, form.Slug, principal.ID)
	if err != nil {
		h.logger.Error("create store", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(store))
}

type assignMemberForm struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Role   string `json:"role" validate:"required,oneof=ADMIN MODERATOR GUEST"`
}

// AssignMember grants or replaces a user's role for the store.
func (h *Handler) AssignMember(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "store id must be numeric")
		return
	}
	var form assignMemberForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	assignment := authz.StoreRoleAssignment{UserID: form.UserID, StoreID: storeID, Role: authz.StoreRole(form.Role)}
	if err := h.service.AssignRole(r.Context(), assignment); err != nil {
		h.logger.Error("assign member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.roleCache != nil {
		if err := h.roleCache.Invalidate(r.Context(), form.UserID); err != nil {
			h.logger.Warn("role cache invalidate", slog.Int64("user_id", form.UserID), slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func toResponse(s *Store) storeResponse {
	return storeResponse{ID: s.ID, Name: s.Name, Slug: s.Slug, OwnerID: s.OwnerID, IsActive: s.IsActive}
}
