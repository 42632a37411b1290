package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendora-shop/vendora/internal/adapters"
	"github.com/vendora-shop/vendora/internal/audit"
	"github.com/vendora-shop/vendora/internal/authz"
	"github.com/vendora-shop/vendora/internal/orders"
	"github.com/vendora-shop/vendora/internal/platform/httpx"
	"github.com/vendora-shop/vendora/internal/stores"
)

// Controller names used for policy resolution. Handler-name collisions
// across controllers are harmless because resolution is scoped to these.
const (
	ControllerStores = "stores"
	ControllerOrders = "orders"
	ControllerAudit  = "audit"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	Resolver      *authz.PolicyResolver
	Guard         authz.Middleware
	StoresHandler *stores.Handler
	OrdersHandler *orders.Handler
	AuditHandler  *audit.Handler
	OrderLookup   adapters.OrderLookup
}

// NewRouter constructs the chi.Router. Policy tables and route descriptors
// are registered here, right next to the routes they protect, so the whole
// authorization surface is readable in one place.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	// Static fallback tables. Declarative Meta on a route always wins over
	// these for the same handler.
	params.Resolver.RegisterTable(ControllerStores, authz.AccessPolicyTable{
		"Get": {RequireAuthenticated: true},
	})
	params.Resolver.RegisterTable(ControllerOrders, authz.AccessPolicyTable{
		"Get": {RequireAuthenticated: true},
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/stores", func(r chi.Router) {
		// Resolved from the stores table: authentication only.
		r.With(params.Guard.Guard(authz.Route{
			Controller: ControllerStores,
			Handler:    "Get",
		})).Get("/{storeID}", params.StoresHandler.Get)

		r.With(params.Guard.Guard(authz.Route{
			Controller:  ControllerStores,
			Handler:     "Create",
			Meta:        &authz.PolicyEntry{RequireAuthenticated: true},
			Permissions: []authz.PermissionScope{{Resource: authz.ResourceStores, Action: authz.ActionCreate}},
		})).Post("/", params.StoresHandler.Create)

		// Membership management is reserved for the store's admins.
		r.With(params.Guard.Guard(authz.Route{
			Controller:   ControllerStores,
			Handler:      "AssignMember",
			Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
			StoreIDParam: "storeID",
		})).Put("/{storeID}/members", params.StoresHandler.AssignMember)

		// Store staff only; the store id rides on the path.
		r.With(params.Guard.Guard(authz.Route{
			Controller:   ControllerOrders,
			Handler:      "ListForStore",
			Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin, authz.StoreRoleModerator}},
			StoreIDParam: "storeID",
			Permissions:  []authz.PermissionScope{{Resource: authz.ResourceOrders, Action: authz.ActionRead}},
		})).Get("/{storeID}/orders", params.OrdersHandler.ListForStore)
	})

	r.Route("/orders", func(r chi.Router) {
		// Resolved from the orders table plus an ownership check: customers
		// see their own orders, site admins see all.
		r.With(params.Guard.Guard(authz.Route{
			Controller: ControllerOrders,
			Handler:    "Get",
			Owner: &authz.EntityOwnerConfig{
				Lookup:  params.OrderLookup,
				IDParam: "orderID",
				OwnerOf: adapters.OrderOwner,
			},
		})).Get("/{orderID}", params.OrdersHandler.Get)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(params.Guard.Guard(authz.Route{
			Controller: ControllerAudit,
			Handler:    "Recent",
			Meta:       &authz.PolicyEntry{AdminRole: authz.AdminRoleSite},
		})).Get("/decisions", params.AuditHandler.Recent)
	})

	return r
}
