package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beezio/settlement-backend/pkg/db/models"
)

// Repository manages read access to products and dropship cost mappings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindCostMapping(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*models.DropshipCostMapping, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCostMapping(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*models.DropshipCostMapping, error) {
	if variantID != nil {
		mapping, err := r.findMapping(ctx, "product_id = ? AND variant_id = ?", productID, *variantID)
		if err != nil {
			return nil, err
		}
		if mapping != nil {
			return mapping, nil
		}
	}
	return r.findMapping(ctx, "product_id = ? AND variant_id IS NULL", productID)
}

func (r *repository) findMapping(ctx context.Context, query string, args ...interface{}) (*models.DropshipCostMapping, error) {
	var mapping models.DropshipCostMapping
	err := r.db.WithContext(ctx).Where(query, args...).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}
