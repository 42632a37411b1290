package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Request is everything the chain needs to authorize one inbound call.
type Request struct {
	Route      Route
	Credential string
	// Params holds route parameters (path and query) as strings.
	Params map[string]string
}

// DecisionRecord is the audit shape emitted for every evaluated request.
type DecisionRecord struct {
	ID         string
	UserID     int64
	Controller string
	Handler    string
	Allowed    bool
	Kind       string
	Reason     string
	At         time.Time
}

// DecisionRecorder receives decision records. Recording is best effort and
// must never influence the decision itself.
type DecisionRecorder interface {
	Record(ctx context.Context, rec DecisionRecord) error
}

// Chain evaluates the authorization stages for a request in fixed order:
// token validation, site-admin computation, store-role check, entity
// ownership, permission scopes. The order is a visible slice, not an artifact
// of registration; stages run strictly sequentially because each depends on
// trust flags set by the previous one.
type Chain struct {
	tokens   *TokenValidator
	users    UserRoleSource
	admins   AdminSource
	stores   StoreRoleSource
	resolver *PolicyResolver
	owners   *EntityOwnerResolver
	engine   Engine
	logger   *slog.Logger
	recorder DecisionRecorder

	stages []stage
}

type stage struct {
	name string
	run  func(ctx context.Context, st *chainState) *Decision
}

// chainState is the single piece of per-request state, owned exclusively by
// the evaluating goroutine.
type chainState struct {
	req       Request
	entry     *PolicyEntry
	principal Principal
}

// ChainConfig collects chain dependencies. Users, Admins and Stores are three
// separate bindings even when they wrap the same backing service; each stage
// names the dependency it consumes, so no constructor can silently hand one
// adapter two roles.
type ChainConfig struct {
	Tokens   *TokenValidator
	Users    UserRoleSource
	Admins   AdminSource
	Stores   StoreRoleSource
	Resolver *PolicyResolver
	Owners   *EntityOwnerResolver
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// NewChain constructs the chain with its canonical stage order.
func NewChain(cfg ChainConfig) *Chain {
	c := &Chain{
		tokens:   cfg.Tokens,
		users:    cfg.Users,
		admins:   cfg.Admins,
		stores:   cfg.Stores,
		resolver: cfg.Resolver,
		owners:   cfg.Owners,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}
	c.stages = []stage{
		{name: "token", run: c.stageToken},
		{name: "site_admin", run: c.stageSiteAdmin},
		{name: "store_role", run: c.stageStoreRole},
		{name: "ownership", run: c.stageOwnership},
		{name: "permissions", run: c.stagePermissions},
	}
	return c
}

// Evaluate runs the request through every stage, short-circuiting on the
// first deny. Same inputs against the same backing data always produce the
// same decision.
func (c *Chain) Evaluate(ctx context.Context, req Request) (Decision, Principal) {
	st := &chainState{req: req, entry: c.resolver.Resolve(req.Route)}
	for _, s := range c.stages {
		if d := s.run(ctx, st); d != nil {
			c.record(ctx, st, *d)
			c.logDeny(ctx, st, s.name, *d)
			return *d, st.principal
		}
	}
	d := Allow()
	c.record(ctx, st, d)
	return d, st.principal
}

// stageToken verifies the credential and builds the principal.
func (c *Chain) stageToken(ctx context.Context, st *chainState) *Decision {
	p, err := c.tokens.Authenticate(ctx, st.req.Credential)
	if err != nil {
		d := Deny(DenyUnauthenticated, err.Error())
		return &d
	}
	st.principal = p
	return nil
}

// stageSiteAdmin always runs, whether or not any policy asks for admin. The
// flag is recomputed server-side and overwrites anything attached earlier;
// an adapter failure logs and defaults to false.
func (c *Chain) stageSiteAdmin(ctx context.Context, st *chainState) *Decision {
	admin, err := c.users.IsSiteAdmin(ctx, st.principal.ID)
	if err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "site admin lookup failed, defaulting to false",
				slog.Int64("user_id", st.principal.ID), slog.Any("error", err))
		}
		admin = false
	}
	st.principal = st.principal.WithSiteAdmin(admin)

	// Routes with an explicit admin-role constraint additionally require the
	// admin record to be confirmed through its own source; the bypass flag
	// alone is not enough there.
	if st.entry != nil && st.entry.AdminRole != "" {
		valid, err := c.admins.IsUserValidAdmin(ctx, st.principal.ID)
		if err != nil {
			if c.logger != nil {
				c.logger.WarnContext(ctx, "admin record lookup failed, failing closed",
					slog.Int64("user_id", st.principal.ID), slog.Any("error", err))
			}
			valid = false
		}
		if !valid {
			d := Deny(DenyForbidden, "administrator record not confirmed")
			return &d
		}
	}

	if d := c.engine.CheckAdmin(st.principal, st.entry); !d.Allowed {
		return &d
	}
	return nil
}

// stageStoreRole resolves the target store, then loads the principal's role
// for it and checks it against the policy. A missing or inactive store denies.
// Site admins bypass; a declared constraint without a usable store id denies
// as a configuration error.
func (c *Chain) stageStoreRole(ctx context.Context, st *chainState) *Decision {
	if st.entry == nil || len(st.entry.StoreRoles) == 0 {
		return nil
	}
	if st.principal.SiteAdmin {
		return nil
	}
	target := c.storeTarget(st)
	if target.HasStoreID {
		store, err := c.stores.FindStore(ctx, target.StoreID)
		if err != nil || store == nil {
			if err != nil && c.logger != nil {
				c.logger.WarnContext(ctx, "store lookup failed",
					slog.Int64("store_id", target.StoreID), slog.Any("error", err))
			}
			d := Deny(DenyForbidden, "target store not found")
			return &d
		}
		if !store.IsActive {
			d := Deny(DenyForbidden, "target store is inactive")
			return &d
		}
		assignments, err := c.users.GetUserStoreRoles(ctx, st.principal.ID)
		if err != nil {
			if c.logger != nil {
				c.logger.WarnContext(ctx, "store role lookup failed",
					slog.Int64("user_id", st.principal.ID), slog.Any("error", err))
			}
			assignments = nil
		}
		st.principal = st.principal.WithStoreRoles(assignments)
	}
	if d := c.engine.CheckStoreRole(st.principal, st.entry, target); !d.Allowed {
		return &d
	}
	return nil
}

// stageOwnership retrieves the target entity and compares its owner to the
// principal. Site admins bypass. A missing entity denies; with
// AllowMissingEntity it denies through the ownership comparison instead of
// surfacing a lookup failure.
func (c *Chain) stageOwnership(ctx context.Context, st *chainState) *Decision {
	cfg := st.req.Route.Owner
	if cfg == nil {
		return nil
	}
	if st.principal.SiteAdmin {
		return nil
	}
	entity, err := c.owners.ResolveOwner(ctx, cfg, st.req.Params)
	if err != nil {
		if cfg.AllowMissingEntity {
			d := Deny(DenyForbidden, "entity absent, treated as not owned")
			return &d
		}
		d := Deny(DenyForbidden, err.Error())
		return &d
	}
	if cfg.OwnerOf == nil {
		d := Deny(DenyForbidden, fmt.Sprintf("%v: no owner extractor for route %s.%s",
			ErrConfiguration, st.req.Route.Controller, st.req.Route.Handler))
		return &d
	}
	ownerID, ok := cfg.OwnerOf(entity)
	if !ok || ownerID != st.principal.ID {
		d := Deny(DenyForbidden, "principal does not own target entity")
		return &d
	}
	return nil
}

// stagePermissions requires every declared scope unless the principal is a
// site admin or a store admin for the route's store.
func (c *Chain) stagePermissions(ctx context.Context, st *chainState) *Decision {
	required := st.req.Route.Permissions
	if len(required) == 0 {
		return nil
	}
	if st.principal.SiteAdmin {
		return nil
	}
	target := c.storeTarget(st)
	if target.HasStoreID && !st.principal.StoreRolesLoaded() {
		assignments, err := c.users.GetUserStoreRoles(ctx, st.principal.ID)
		if err == nil {
			st.principal = st.principal.WithStoreRoles(assignments)
		}
	}
	if !st.principal.ScopesLoaded() {
		scopes, err := c.users.GrantedScopes(ctx, st.principal.ID)
		if err != nil {
			if c.logger != nil {
				c.logger.WarnContext(ctx, "scope lookup failed",
					slog.Int64("user_id", st.principal.ID), slog.Any("error", err))
			}
			scopes = nil
		}
		st.principal = st.principal.WithScopes(scopes)
	}
	if d := c.engine.CheckPermissions(st.principal, required, target); !d.Allowed {
		return &d
	}
	return nil
}

func (c *Chain) storeTarget(st *chainState) PolicyTarget {
	param := st.req.Route.StoreIDParam
	if param == "" {
		return PolicyTarget{}
	}
	raw, ok := st.req.Params[param]
	if !ok || raw == "" {
		return PolicyTarget{}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return PolicyTarget{}
	}
	return PolicyTarget{StoreID: id, HasStoreID: true}
}

func (c *Chain) record(ctx context.Context, st *chainState, d Decision) {
	if c.recorder == nil {
		return
	}
	rec := DecisionRecord{
		ID:         uuid.NewString(),
		UserID:     st.principal.ID,
		Controller: st.req.Route.Controller,
		Handler:    st.req.Route.Handler,
		Allowed:    d.Allowed,
		Kind:       string(d.Kind),
		Reason:     d.Reason,
		At:         time.Now().UTC(),
	}
	if err := c.recorder.Record(ctx, rec); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "decision record failed", slog.Any("error", err))
	}
}

func (c *Chain) logDeny(ctx context.Context, st *chainState, stageName string, d Decision) {
	if c.logger == nil {
		return
	}
	c.logger.InfoContext(ctx, "request denied",
		slog.String("controller", st.req.Route.Controller),
		slog.String("handler", st.req.Route.Handler),
		slog.String("stage", stageName),
		slog.String("kind", string(d.Kind)),
		slog.String("reason", d.Reason),
		slog.Int64("user_id", st.principal.ID),
	)
}
