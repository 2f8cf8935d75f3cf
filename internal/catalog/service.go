package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/db/models"
)

// ProviderCJ marks products fulfilled through the CJ drop-ship supplier.
const ProviderCJ = "cj"

// Service exposes the catalog lookups settlement depends on.
type Service interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	IsDropship(product *models.Product) bool
	// UnitCostCents returns the supplier unit cost for a dropshipped
	// product, preferring a variant-level mapping. The boolean reports
	// whether a positive cost was found; a missing mapping is not an error.
	UnitCostCents(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (int64, bool, error)
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return s.repo.FindProductByID(ctx, id)
}

func (s *service) IsDropship(product *models.Product) bool {
	if product == nil || product.DropshipProvider == nil {
		return false
	}
	return strings.EqualFold(*product.DropshipProvider, ProviderCJ)
}

func (s *service) UnitCostCents(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (int64, bool, error) {
	mapping, err := s.repo.FindCostMapping(ctx, productID, variantID)
	if err != nil {
		return 0, false, err
	}
	if mapping == nil || mapping.UnitCostCents <= 0 {
		return 0, false, nil
	}
	return mapping.UnitCostCents, true, nil
}
