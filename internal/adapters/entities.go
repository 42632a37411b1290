package adapters

import (
	"context"
	"errors"
	"strconv"

	"github.com/vendora-shop/vendora/internal/orders"
	"github.com/vendora-shop/vendora/internal/platform/httpx"
	"github.com/vendora-shop/vendora/internal/reviews"
)

// Entity lookups expose deliberately minimal surfaces: each collaborator
// implements only one of the resolver's lookup interfaces, which is why the
// resolver carries a fallback chain in the first place.

// OrderLookup exposes orders through the preferred GetEntityByID surface.
type OrderLookup struct {
	Repo orders.Repository
}

// GetEntityByID implements authz.EntityGetter. A missing order yields
// (nil, nil) so the resolver treats it as not found rather than a failure.
func (l OrderLookup) GetEntityByID(ctx context.Context, id string) (any, error) {
	orderID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	order, err := l.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// OrderOwner extracts the customer id from a loaded order.
func OrderOwner(entity any) (int64, bool) {
	order, ok := entity.(*orders.Order)
	if !ok {
		return 0, false
	}
	return order.CustomerID, true
}

// ReviewLookup exposes reviews through the FindByID surface only.
type ReviewLookup struct {
	Repo reviews.Repository
}

// FindByID implements authz.EntityFinder.
func (l ReviewLookup) FindByID(ctx context.Context, id string) (any, error) {
	reviewID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	review, err := l.Repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return review, nil
}

// ReviewOwner extracts the author id from a loaded review.
func ReviewOwner(entity any) (int64, bool) {
	review, ok := entity.(*reviews.Review)
	if !ok {
		return 0, false
	}
	return review.AuthorID, true
}
