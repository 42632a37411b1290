package orders

import "context"

// Service wraps order read operations.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListForStore returns a store's orders.
func (s *Service) ListForStore(ctx context.Context, storeID int64) ([]Order, error) {
	return s.repo.ListStoreOrders(ctx, storeID)
}
