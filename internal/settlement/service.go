package settlement

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/beezio/settlement-backend/internal/catalog"
	"github.com/beezio/settlement-backend/internal/profiles"
	"github.com/beezio/settlement-backend/pkg/config"
	"github.com/beezio/settlement-backend/pkg/db"
	"github.com/beezio/settlement-backend/pkg/db/models"
	"github.com/beezio/settlement-backend/pkg/enums"
	pkgerrors "github.com/beezio/settlement-backend/pkg/errors"
	"github.com/beezio/settlement-backend/pkg/logger"
	"github.com/beezio/settlement-backend/pkg/metrics"
	"github.com/beezio/settlement-backend/pkg/outbox"
	"github.com/beezio/settlement-backend/pkg/outbox/payloads"
)

const eventSource = "settlement"

// Stripe still delivers transfer.failed for Connect accounts even
// though the current API reference no longer lists it, so stripe-go
// ships no constant for it.
const eventTypeTransferFailed = stripe.EventType("transfer.failed")

// Replays and races surface as unique violations inside the settlement
// transaction. Both unwind the transaction and are handled as skips.
var (
	errEventReplay    = stderrors.New("event already recorded")
	errAlreadySettled = stderrors.New("payment already settled")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo              Repository
	Profiles          profiles.Service
	Catalog           catalog.Service
	Outbox            *outbox.Service
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.WebhookMetrics
	Config            config.SettlementConfig
	Now               func() time.Time
}

// Service turns verified Stripe events into settlement state: payment
// event records, transactions, distributions, allocations, and outbox
// events for the fulfillment pipeline.
type Service struct {
	repo     Repository
	profiles profiles.Service
	catalog  catalog.Service
	outbox   *outbox.Service
	txRunner txRunner
	logg     *logger.Logger
	metrics  *metrics.WebhookMetrics
	cfg      config.SettlementConfig
	resolver *resolver
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement repo required")
	}
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profiles service required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog service required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     params.Repo,
		profiles: params.Profiles,
		catalog:  params.Catalog,
		outbox:   params.Outbox,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		metrics:  params.Metrics,
		cfg:      params.Config,
		resolver: newResolver(params.Repo, params.Catalog, params.Profiles, params.Config),
		now:      now,
	}, nil
}

// HandleEvent dispatches one verified Stripe event. Event types outside
// the settlement surface are acknowledged without side effects so Stripe
// stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	ctx = s.logg.WithEventID(ctx, event.ID)
	eventType := string(event.Type)
	start := s.now()
	defer func() {
		s.metrics.ObserveDuration(eventType, s.now().Sub(start))
	}()

	err := s.dispatch(ctx, event)
	switch {
	case err == nil:
		s.metrics.IncSettled(eventType)
		return nil
	case stderrors.Is(err, errEventReplay), stderrors.Is(err, errAlreadySettled):
		s.logg.Info(ctx, "duplicate delivery skipped")
		s.metrics.IncSkipped(eventType)
		return nil
	default:
		s.metrics.IncFailed(eventType)
		return err
	}
}

func (s *Service) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		return s.handlePaymentSucceeded(ctx, event, intent)
	case stripe.EventTypePaymentIntentPaymentFailed:
		intent, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		return s.handlePaymentTerminated(ctx, event, intent, enums.TransactionStatusFailed)
	case stripe.EventTypePaymentIntentCanceled:
		intent, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		return s.handlePaymentTerminated(ctx, event, intent, enums.TransactionStatusCanceled)
	case stripe.EventTypeRefundCreated, stripe.EventTypeRefundUpdated:
		var refund stripe.Refund
		if err := json.Unmarshal(event.Data.Raw, &refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode refund event")
		}
		return s.handleRefund(ctx, event, &refund)
	case stripe.EventTypeChargeDisputeCreated, stripe.EventTypeChargeDisputeUpdated,
		stripe.EventTypeChargeDisputeFundsWithdrawn, stripe.EventTypeChargeDisputeFundsReinstated:
		dispute, err := decodeDispute(event)
		if err != nil {
			return err
		}
		return s.handleDisputeOpened(ctx, event, dispute)
	case stripe.EventTypeChargeDisputeClosed:
		dispute, err := decodeDispute(event)
		if err != nil {
			return err
		}
		return s.handleDisputeClosed(ctx, event, dispute)
	case stripe.EventTypeTransferCreated, stripe.EventTypeTransferUpdated,
		stripe.EventTypeTransferReversed, eventTypeTransferFailed:
		var transfer stripe.Transfer
		if err := json.Unmarshal(event.Data.Raw, &transfer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode transfer event")
		}
		return s.handleTransfer(ctx, event, &transfer)
	default:
		s.logg.Info(ctx, "unhandled event type acknowledged")
		return nil
	}
}

// handlePaymentSucceeded performs the full settlement. Everything that
// must be atomic runs in one database transaction; advisory accounting
// rows are written best-effort after commit.
func (s *Service) handlePaymentSucceeded(ctx context.Context, event *stripe.Event, intent *stripe.PaymentIntent) error {
	ctx = s.logg.WithPaymentIntentID(ctx, intent.ID)

	if existing, err := s.repo.FindTransactionByPaymentIntent(ctx, intent.ID); err != nil {
		return err
	} else if existing != nil {
		return errAlreadySettled
	}

	source, err := s.resolver.sourceFor(ctx, intent.Metadata, intent.Amount, string(intent.Currency))
	if err != nil {
		return err
	}
	sale, err := source.resolve(ctx)
	if err != nil {
		return err
	}
	if len(sale.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale resolved with no line items")
	}

	splits := computeSplits(s.cfg, sale.Items)
	bonuses, err := s.resolveReferrals(ctx, splits)
	if err != nil {
		return err
	}
	cogs, err := s.estimateCOGS(ctx, sale.Items)
	if err != nil {
		return err
	}
	bd := buildBreakdown(sale, splits, bonuses, cogs)

	transaction := &models.Transaction{
		ID:                    uuid.New(),
		StripePaymentIntentID: intent.ID,
		StripeChargeID:        chargeID(intent),
		AmountTotalCents:      sale.TotalCents,
		Currency:              sale.Currency,
		Status:                enums.TransactionStatusCompleted,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.recordPaymentEvent(ctx, repo, event, intent.ID, sale.IntentID); err != nil {
			return err
		}
		if err := repo.CreateTransaction(ctx, transaction); err != nil {
			if db.IsUniqueViolation(err, "stripe_payment_intent_id") {
				return errAlreadySettled
			}
			return err
		}

		order, err := repo.FindOrderByPaymentIntent(ctx, intent.ID)
		if err != nil {
			return err
		}
		var orderID *uuid.UUID
		if order != nil {
			orderID = &order.ID
			order.TransactionID = &transaction.ID
			order.Status = enums.OrderStatusCompleted
			order.PaymentStatus = enums.OrderPaymentStatusPaid
			order.FulfillmentStatus = enums.OrderFulfillmentStatusProcessing
			if err := repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
		}

		rows := buildDistributions(s.now(), s.cfg, transaction.ID, orderID, sale, bd)
		if err := repo.CreateDistributions(ctx, rows); err != nil {
			return err
		}

		if sale.IntentID != nil {
			if err := repo.UpdateIntentStatusByPaymentIntent(ctx, intent.ID, enums.CheckoutIntentStatusCompleted); err != nil {
				return err
			}
		}

		settled := payloads.OrderSettledEvent{
			TransactionID:   transaction.ID,
			OrderID:         orderID,
			SellerID:        sale.Items[0].SellerID,
			PaymentIntentID: intent.ID,
			TotalCents:      sale.TotalCents,
			Currency:        sale.Currency,
			Dropship:        bd.CogsItemCount > 0,
			SettledAt:       s.now(),
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderSettled,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   transaction.ID,
			Source:        eventSource,
			Data:          settled,
			Version:       1,
			OccurredAt:    s.now(),
		})
	})
	if err != nil {
		return err
	}

	ctx = s.logg.WithTransactionID(ctx, transaction.ID.String())
	s.writeAdvisoryRows(ctx, transaction.ID, sale, bd)
	s.logg.Info(ctx, "payment settled")
	return nil
}

// writeAdvisoryRows persists accounting rows that must never unwind a
// committed settlement. Failures are logged and dropped.
func (s *Service) writeAdvisoryRows(ctx context.Context, transactionID uuid.UUID, sale *ResolvedSale, bd breakdown) {
	for _, bonus := range bd.ReferralBonuses {
		row := &models.ReferralCommission{
			TransactionID: transactionID,
			ReferrerID:    bonus.RecruiterID,
			ReferredID:    bonus.RecruitedID,
			AmountCents:   bonus.AmountCents,
			Status:        enums.ReferralCommissionStatusPending,
		}
		if err := s.repo.CreateReferralCommission(ctx, row); err != nil {
			s.logg.Error(ctx, "referral commission write failed", err)
		}
	}

	if rows := buildAllocations(transactionID, sale, bd); len(rows) > 0 {
		if err := s.repo.CreateAllocations(ctx, rows); err != nil {
			s.logg.Error(ctx, "allocation write failed", err)
		}
	}

	month := s.now().UTC().Format("2006-01")
	if err := s.repo.UpsertPlatformRevenue(ctx, month, enums.RevenueTypeBeezioFee, platformNetCents(sale, bd)); err != nil {
		s.logg.Error(ctx, "platform revenue rollup failed", err)
	}
}

// handlePaymentTerminated covers payment_intent failure and cancellation.
// There is usually no transaction yet; the intent and order still flip.
func (s *Service) handlePaymentTerminated(ctx context.Context, event *stripe.Event, intent *stripe.PaymentIntent, status enums.TransactionStatus) error {
	ctx = s.logg.WithPaymentIntentID(ctx, intent.ID)
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.recordPaymentEvent(ctx, repo, event, intent.ID, nil); err != nil {
			return err
		}

		transaction, err := repo.FindTransactionByPaymentIntent(ctx, intent.ID)
		if err != nil {
			return err
		}
		if transaction != nil && CanTransition(transaction.Status, status) {
			if err := repo.UpdateTransactionStatus(ctx, transaction.ID, status); err != nil {
				return err
			}
		}

		if err := repo.UpdateIntentStatusByPaymentIntent(ctx, intent.ID, enums.CheckoutIntentStatusFailed); err != nil {
			return err
		}

		order, err := repo.FindOrderByPaymentIntent(ctx, intent.ID)
		if err != nil || order == nil {
			return err
		}
		if status == enums.TransactionStatusCanceled {
			order.Status = enums.OrderStatusCanceled
			order.PaymentStatus = enums.OrderPaymentStatusCanceled
		} else {
			order.Status = enums.OrderStatusFailed
			order.PaymentStatus = enums.OrderPaymentStatusFailed
		}
		return repo.UpdateOrder(ctx, order)
	})
}

func (s *Service) handleRefund(ctx context.Context, event *stripe.Event, refund *stripe.Refund) error {
	paymentIntentID := refundPaymentIntentID(refund)
	if paymentIntentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund missing payment intent")
	}
	ctx = s.logg.WithPaymentIntentID(ctx, paymentIntentID)

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.recordPaymentEvent(ctx, repo, event, paymentIntentID, nil); err != nil {
			return err
		}

		transaction, err := repo.FindTransactionByPaymentIntent(ctx, paymentIntentID)
		if err != nil {
			return err
		}
		if transaction == nil {
			s.logg.Warn(ctx, "refund for unknown payment acknowledged")
			return nil
		}
		if transaction.Status == enums.TransactionStatusRefunded {
			return nil
		}
		if err := guardTransition(transaction.Status, enums.TransactionStatusRefunded); err != nil {
			return err
		}
		if err := repo.UpdateTransactionStatus(ctx, transaction.ID, enums.TransactionStatusRefunded); err != nil {
			return err
		}

		order, err := repo.FindOrderByPaymentIntent(ctx, paymentIntentID)
		if err != nil {
			return err
		}
		if order != nil {
			order.Status = enums.OrderStatusRefunded
			order.PaymentStatus = enums.OrderPaymentStatusRefunded
			if err := repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
		}

		refunded := payloads.TransactionRefundedEvent{
			TransactionID:   transaction.ID,
			PaymentIntentID: paymentIntentID,
			AmountCents:     refund.Amount,
			RefundedAt:      s.now(),
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionRefunded,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   transaction.ID,
			Source:        eventSource,
			Data:          refunded,
			Version:       1,
			OccurredAt:    s.now(),
		})
	})
}

func (s *Service) handleDisputeOpened(ctx context.Context, event *stripe.Event, dispute *stripe.Dispute) error {
	return s.transitionDispute(ctx, event, dispute, enums.TransactionStatusDisputed)
}

func (s *Service) handleDisputeClosed(ctx context.Context, event *stripe.Event, dispute *stripe.Dispute) error {
	status := enums.TransactionStatusDisputeLost
	if dispute.Status == stripe.DisputeStatusWon {
		status = enums.TransactionStatusDisputeWon
	}
	return s.transitionDispute(ctx, event, dispute, status)
}

func (s *Service) transitionDispute(ctx context.Context, event *stripe.Event, dispute *stripe.Dispute, status enums.TransactionStatus) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		transaction, err := s.findDisputedTransaction(ctx, repo, dispute)
		if err != nil {
			return err
		}
		if transaction == nil {
			s.logg.Warn(ctx, "dispute for unknown payment acknowledged")
			return nil
		}
		ctx = s.logg.WithTransactionID(ctx, transaction.ID.String())
		if err := s.recordPaymentEvent(ctx, repo, event, transaction.StripePaymentIntentID, nil); err != nil {
			return err
		}
		if transaction.Status == status {
			return nil
		}
		if err := guardTransition(transaction.Status, status); err != nil {
			return err
		}
		if err := repo.UpdateTransactionStatus(ctx, transaction.ID, status); err != nil {
			return err
		}

		if status == enums.TransactionStatusDisputed {
			order, err := repo.FindOrderByPaymentIntent(ctx, transaction.StripePaymentIntentID)
			if err != nil {
				return err
			}
			if order != nil {
				order.Status = enums.OrderStatusDisputed
				order.PaymentStatus = enums.OrderPaymentStatusDisputed
				if err := repo.UpdateOrder(ctx, order); err != nil {
					return err
				}
			}
		}

		disputed := payloads.TransactionDisputedEvent{
			TransactionID:   transaction.ID,
			PaymentIntentID: transaction.StripePaymentIntentID,
			DisputeStatus:   string(dispute.Status),
			AmountCents:     dispute.Amount,
			OccurredAt:      s.now(),
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionDisputed,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   transaction.ID,
			Source:        eventSource,
			Data:          disputed,
			Version:       1,
			OccurredAt:    s.now(),
		})
	})
}

func (s *Service) findDisputedTransaction(ctx context.Context, repo Repository, dispute *stripe.Dispute) (*models.Transaction, error) {
	if dispute.PaymentIntent != nil && dispute.PaymentIntent.ID != "" {
		return repo.FindTransactionByPaymentIntent(ctx, dispute.PaymentIntent.ID)
	}
	if dispute.Charge != nil && dispute.Charge.ID != "" {
		return repo.FindTransactionByChargeID(ctx, dispute.Charge.ID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute missing payment reference")
}

// handleTransfer reconciles payout rows against Stripe transfer events.
func (s *Service) handleTransfer(ctx context.Context, event *stripe.Event, transfer *stripe.Transfer) error {
	payout, err := s.repo.FindPayoutByTransferID(ctx, transfer.ID)
	if err != nil {
		return err
	}
	if payout == nil {
		s.logg.Warn(ctx, "transfer for unknown payout acknowledged")
		return nil
	}

	switch {
	case event.Type == stripe.EventTypeTransferReversed || transfer.Reversed:
		payout.Status = enums.PayoutStatusReversed
		reason := "transfer reversed"
		payout.FailureReason = &reason
	case event.Type == eventTypeTransferFailed:
		payout.Status = enums.PayoutStatusFailed
		reason := transferFailureMessage(event)
		payout.FailureReason = &reason
	default:
		// created and updated both confirm delivery.
		payout.Status = enums.PayoutStatusCompleted
		completedAt := s.now()
		payout.CompletedAt = &completedAt
	}
	return s.repo.UpdatePayout(ctx, payout)
}

func transferFailureMessage(event *stripe.Event) string {
	var aux struct {
		FailureMessage string `json:"failure_message"`
	}
	if err := json.Unmarshal(event.Data.Raw, &aux); err == nil && aux.FailureMessage != "" {
		return aux.FailureMessage
	}
	return "transfer failed"
}

// recordPaymentEvent inserts the durable replay guard row. A unique
// violation on the Stripe event id means this delivery was already
// processed.
func (s *Service) recordPaymentEvent(ctx context.Context, repo Repository, event *stripe.Event, paymentIntentID string, intentID *uuid.UUID) error {
	row := &models.PaymentEvent{
		StripeEventID:    event.ID,
		Type:             string(event.Type),
		CheckoutIntentID: intentID,
		Raw:              json.RawMessage(event.Data.Raw),
		ProcessedAt:      s.now(),
	}
	if paymentIntentID != "" {
		row.PaymentIntentID = &paymentIntentID
	}
	if err := repo.InsertPaymentEvent(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "stripe_event_id") {
			return errEventReplay
		}
		return err
	}
	return nil
}

func decodePaymentIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}
	return &intent, nil
}

func decodeDispute(event *stripe.Event) (*stripe.Dispute, error) {
	var dispute stripe.Dispute
	if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode dispute event")
	}
	return &dispute, nil
}

func chargeID(intent *stripe.PaymentIntent) *string {
	if intent.LatestCharge == nil || intent.LatestCharge.ID == "" {
		return nil
	}
	id := intent.LatestCharge.ID
	return &id
}

func refundPaymentIntentID(refund *stripe.Refund) string {
	if refund.PaymentIntent != nil {
		return refund.PaymentIntent.ID
	}
	return ""
}
