package settlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beezio/settlement-backend/pkg/db/models"
	"github.com/beezio/settlement-backend/pkg/enums"
)

// Repository manages persistence for the settlement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	InsertPaymentEvent(ctx context.Context, event *models.PaymentEvent) error

	FindTransactionByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Transaction, error)
	FindTransactionByChargeID(ctx context.Context, chargeID string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status enums.TransactionStatus) error

	CreateDistributions(ctx context.Context, rows []models.Distribution) error
	ListDistributionsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.Distribution, error)
	CreateAllocations(ctx context.Context, rows []models.Allocation) error
	CreateReferralCommission(ctx context.Context, row *models.ReferralCommission) error
	UpsertPlatformRevenue(ctx context.Context, month string, revenueType enums.RevenueType, amountCents int64) error

	FindIntentByID(ctx context.Context, id uuid.UUID) (*models.CheckoutIntent, error)
	UpdateIntentStatusByPaymentIntent(ctx context.Context, paymentIntentID string, status enums.CheckoutIntentStatus) error

	FindOrderByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error

	FindPayoutByTransferID(ctx context.Context, transferID string) (*models.Payout, error)
	UpdatePayout(ctx context.Context, payout *models.Payout) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settlement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) InsertPaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindTransactionByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) FindTransactionByChargeID(ctx context.Context, chargeID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("stripe_charge_id = ?", chargeID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status enums.TransactionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) CreateDistributions(ctx context.Context, rows []models.Distribution) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) ListDistributionsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.Distribution, error) {
	var rows []models.Distribution
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateAllocations(ctx context.Context, rows []models.Allocation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) CreateReferralCommission(ctx context.Context, row *models.ReferralCommission) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) UpsertPlatformRevenue(ctx context.Context, month string, revenueType enums.RevenueType, amountCents int64) error {
	row := models.PlatformRevenue{
		Month:       month,
		Type:        revenueType,
		AmountCents: amountCents,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "month"}, {Name: "type"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"amount_cents": gorm.Expr("platform_revenues.amount_cents + ?", amountCents)}),
		}).
		Create(&row).Error
}

func (r *repository) FindIntentByID(ctx context.Context, id uuid.UUID) (*models.CheckoutIntent, error) {
	var intent models.CheckoutIntent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &intent, nil
}

func (r *repository) UpdateIntentStatusByPaymentIntent(ctx context.Context, paymentIntentID string, status enums.CheckoutIntentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CheckoutIntent{}).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		Update("status", status).Error
}

func (r *repository) FindOrderByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repository) FindPayoutByTransferID(ctx context.Context, transferID string) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).
		Where("stripe_transfer_id = ?", transferID).
		First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repository) UpdatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Save(payout).Error
}
