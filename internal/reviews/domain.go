package reviews

import "time"

// Review is a customer review of a product.
type Review struct {
	ID        int64
	ProductID int64
	AuthorID  int64
	Rating    int
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
