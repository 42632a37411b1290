package orders

import "time"

// Status enumerates order lifecycle states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusCancelled Status = "CANCELLED"
)

// Order represents a customer purchase at one store.
type Order struct {
	ID         int64
	StoreID    int64
	CustomerID int64
	Status     Status
	TotalCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
