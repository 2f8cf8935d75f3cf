package settlement

import (
	"context"

	"github.com/google/uuid"
)

// cogsEstimate is the supplier cost the platform reserves before any
// profit is distributed. Accounting-only; never changes distributions.
type cogsEstimate struct {
	TotalCents int64
	ItemCount  int
}

// estimateCOGS sums supplier unit costs for drop-shipped line items.
// A product without a cost mapping contributes nothing and is not an
// error.
func (s *Service) estimateCOGS(ctx context.Context, items []LineItem) (cogsEstimate, error) {
	var estimate cogsEstimate
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			continue
		}
		product, err := s.catalog.FindProductByID(ctx, item.ProductID)
		if err != nil {
			return estimate, err
		}
		if !s.catalog.IsDropship(product) {
			continue
		}
		unitCost, found, err := s.catalog.UnitCostCents(ctx, item.ProductID, item.VariantID)
		if err != nil {
			return estimate, err
		}
		if !found {
			continue
		}
		estimate.TotalCents += unitCost * item.Quantity
		estimate.ItemCount++
	}
	return estimate, nil
}
