package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEntityNotFound reports that no lookup surface produced the entity.
var ErrEntityNotFound = errors.New("authz: entity not found")

// EntityOwnerResolver retrieves the target entity of an ownership-guarded
// route. Its job ends at retrieval; comparing the owner to the principal is
// the guard's responsibility.
type EntityOwnerResolver struct {
	logger *slog.Logger
}

// NewEntityOwnerResolver constructs a resolver.
func NewEntityOwnerResolver(logger *slog.Logger) *EntityOwnerResolver {
	return &EntityOwnerResolver{logger: logger}
}

// ResolveOwner loads the entity identified by the configured route parameter.
// Lookup surfaces are tried in preference order: GetEntityByID, FindByID,
// FindOne. The first surface that yields an entity wins; a surface that is
// absent, errors, or finds nothing falls through to the next. When every
// surface is exhausted the result is ErrEntityNotFound.
func (r *EntityOwnerResolver) ResolveOwner(ctx context.Context, cfg *EntityOwnerConfig, params map[string]string) (any, error) {
	if cfg == nil || cfg.Lookup == nil {
		return nil, fmt.Errorf("%w: ownership lookup not configured", ErrConfiguration)
	}
	id, ok := params[cfg.IDParam]
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: route parameter %q missing", ErrConfiguration, cfg.IDParam)
	}

	tried := false
	if getter, ok := cfg.Lookup.(EntityGetter); ok {
		tried = true
		entity, err := getter.GetEntityByID(ctx, id)
		if err == nil && entity != nil {
			return entity, nil
		}
		r.logLookupMiss(ctx, "GetEntityByID", id, err)
	}
	if finder, ok := cfg.Lookup.(EntityFinder); ok {
		tried = true
		entity, err := finder.FindByID(ctx, id)
		if err == nil && entity != nil {
			return entity, nil
		}
		r.logLookupMiss(ctx, "FindByID", id, err)
	}
	if querier, ok := cfg.Lookup.(EntityQuerier); ok {
		tried = true
		entity, err := querier.FindOne(ctx, map[string]string{"id": id})
		if err == nil && entity != nil {
			return entity, nil
		}
		r.logLookupMiss(ctx, "FindOne", id, err)
	}
	if !tried {
		return nil, fmt.Errorf("%w: lookup %T exposes no known surface", ErrConfiguration, cfg.Lookup)
	}
	return nil, ErrEntityNotFound
}

func (r *EntityOwnerResolver) logLookupMiss(ctx context.Context, method, id string, err error) {
	if r.logger == nil || err == nil {
		return
	}
	r.logger.WarnContext(ctx, "entity lookup failed", slog.String("method", method), slog.String("id", id), slog.Any("error", err))
}
