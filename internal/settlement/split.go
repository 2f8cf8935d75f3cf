package settlement

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beezio/settlement-backend/internal/catalog"
	"github.com/beezio/settlement-backend/internal/profiles"
	"github.com/beezio/settlement-backend/pkg/config"
	"github.com/beezio/settlement-backend/pkg/db/models"
	"github.com/beezio/settlement-backend/pkg/enums"
	pkgerrors "github.com/beezio/settlement-backend/pkg/errors"
	"github.com/beezio/settlement-backend/pkg/money"
)

const (
	metadataIntentID  = "checkout_intent_id"
	metadataAllItems  = "all_items"
	metadataProductID = "product_id"
	metadataSellerID  = "seller_id"
	metadataAffiliate = "affiliate_id"
	metadataUnitPrice = "unit_price"
	metadataQuantity  = "quantity"
	metadataSellerAsk = "seller_ask"
	metadataRate      = "commission_rate"
	metadataTax       = "tax_amount"
	metadataShipping  = "shipping_amount"
)

// saleSource produces the resolved sale for one settlement. The two
// producers share every downstream step.
type saleSource interface {
	resolve(ctx context.Context) (*ResolvedSale, error)
}

// resolver picks the sale source: the checkout intent snapshot when the
// payment metadata references one, the legacy metadata shape otherwise.
type resolver struct {
	repo     Repository
	catalog  catalog.Service
	profiles profiles.Service
	cfg      config.SettlementConfig
	validate *validator.Validate
}

func newResolver(repo Repository, catalogSvc catalog.Service, profileSvc profiles.Service, cfg config.SettlementConfig) *resolver {
	return &resolver{
		repo:     repo,
		catalog:  catalogSvc,
		profiles: profileSvc,
		cfg:      cfg,
		validate: validator.New(),
	}
}

func (r *resolver) sourceFor(ctx context.Context, metadata map[string]string, totalCents int64, currency string) (saleSource, error) {
	if raw, ok := metadata[metadataIntentID]; ok && strings.TrimSpace(raw) != "" {
		intentID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed checkout intent id")
		}
		intent, err := r.repo.FindIntentByID(ctx, intentID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout intent")
		}
		if intent != nil {
			return &intentSource{resolver: r, intent: intent}, nil
		}
	}
	return &legacySource{resolver: r, metadata: metadata, totalCents: totalCents, currency: currency}, nil
}

// intentLine is the stored line-item shape inside checkout_intents.split.
// Fee fields are line-level cents, already scaled by quantity.
type intentLine struct {
	ProductID          string `json:"product_id" validate:"required,uuid"`
	VariantID          string `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	SellerID           string `json:"seller_id" validate:"required,uuid"`
	AffiliateID        string `json:"affiliate_id,omitempty"`
	UnitPriceCents     int64  `json:"unit_price_cents" validate:"gt=0"`
	Quantity           int64  `json:"quantity" validate:"gte=1"`
	SellerAskCents     int64  `json:"seller_ask_cents" validate:"gte=0"`
	CommissionRate     string `json:"commission_rate,omitempty"`
	AffiliateFeeCents  *int64 `json:"affiliate_fee_cents,omitempty"`
	PlatformFeeCents   *int64 `json:"platform_fee_cents,omitempty"`
	ProcessingFeeCents *int64 `json:"processing_fee_cents,omitempty"`
}

// intentSource maps the immutable checkout intent snapshot into line
// items. Stored per-line amounts are authoritative; nothing is re-derived.
type intentSource struct {
	resolver *resolver
	intent   *models.CheckoutIntent
}

func (s *intentSource) resolve(ctx context.Context) (*ResolvedSale, error) {
	intent := s.intent
	sale := &ResolvedSale{
		IntentID:      &intent.ID,
		TaxCents:      intent.TaxCents,
		ShippingCents: intent.ShippingCents,
		TotalCents:    intent.TotalCents,
		Currency:      intent.Currency,
		FundraiserID:  intent.FundraiserID,
		ReferrerID:    intent.ReferrerID,
	}

	var lines []intentLine
	if len(intent.Split) > 0 {
		if err := json.Unmarshal(intent.Split, &lines); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode intent line items")
		}
	}
	if len(lines) == 0 {
		sale.Items = []LineItem{s.aggregateLine()}
		return sale, nil
	}

	for _, line := range lines {
		if err := s.resolver.validate.Struct(line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid intent line item")
		}
		item, err := s.resolver.lineFromIntent(ctx, line)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, nil
}

// aggregateLine reconstructs a single synthetic line from the intent's
// aggregate columns for snapshots stored without per-item splits.
func (s *intentSource) aggregateLine() LineItem {
	intent := s.intent
	affiliateFee := intent.AffiliateFeeCents
	platformFee := intent.BeezioFeeCents
	processingFee := intent.ProcessingFeeCents
	return LineItem{
		SellerID:             intent.SellerID,
		AffiliateID:          intent.AffiliateID,
		UnitPriceCents:       intent.ProductSubtotalCents,
		Quantity:             1,
		SellerAskCents:       intent.SellerTransferCents,
		AffiliateAmountCents: &affiliateFee,
		PlatformFeeCents:     &platformFee,
		ProcessingFeeCents:   &processingFee,
	}
}

func (r *resolver) lineFromIntent(ctx context.Context, line intentLine) (LineItem, error) {
	item := LineItem{
		UnitPriceCents:       line.UnitPriceCents,
		Quantity:             line.Quantity,
		SellerAskCents:       line.SellerAskCents,
		AffiliateAmountCents: line.AffiliateFeeCents,
		PlatformFeeCents:     line.PlatformFeeCents,
		ProcessingFeeCents:   line.ProcessingFeeCents,
	}

	productID, err := uuid.Parse(line.ProductID)
	if err != nil {
		return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed product id in intent line")
	}
	item.ProductID = productID

	sellerID, err := uuid.Parse(line.SellerID)
	if err != nil {
		return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed seller id in intent line")
	}
	item.SellerID = sellerID

	if line.VariantID != "" {
		variantID, err := uuid.Parse(line.VariantID)
		if err != nil {
			return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed variant id in intent line")
		}
		item.VariantID = &variantID
	}

	if line.AffiliateID != "" {
		affiliate, err := r.profiles.ResolveAffiliate(ctx, line.AffiliateID)
		if err != nil {
			return item, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve affiliate")
		}
		if affiliate != nil {
			item.AffiliateID = &affiliate.ID
		}
	}

	if line.CommissionRate != "" {
		rate, err := decimal.NewFromString(line.CommissionRate)
		if err != nil {
			return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed commission rate in intent line")
		}
		item.CommissionRate = rate
	}

	// Snapshots predating per-line fee storage fall back to the product's
	// commission settings so the affiliate amount can still be derived.
	if item.AffiliateAmountCents == nil && item.AffiliateID != nil && item.CommissionRate.IsZero() {
		if err := r.applyProductCommission(ctx, &item); err != nil {
			return item, err
		}
	}

	return item, nil
}

func (r *resolver) applyProductCommission(ctx context.Context, item *LineItem) error {
	product, err := r.catalog.FindProductByID(ctx, item.ProductID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product for commission")
	}
	if product == nil {
		return nil
	}
	switch product.CommissionType {
	case enums.CommissionTypeFlatRate:
		amount := product.FlatCommissionCents * item.Quantity
		item.AffiliateAmountCents = &amount
	default:
		item.CommissionRate = decimal.NewFromInt(product.CommissionRate)
	}
	return nil
}

// legacyItem is the per-item JSON shape carried in payment metadata by
// clients predating checkout intents. Money fields are decimal dollar
// strings.
type legacyItem struct {
	ProductID      string      `json:"product_id" validate:"required,uuid"`
	VariantID      string      `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	SellerID       string      `json:"seller_id" validate:"required,uuid"`
	AffiliateID    string      `json:"affiliate_id,omitempty"`
	UnitPrice      json.Number `json:"unit_price" validate:"required"`
	Quantity       int64       `json:"quantity" validate:"gte=1"`
	SellerAsk      json.Number `json:"seller_ask,omitempty"`
	CommissionRate json.Number `json:"commission_rate,omitempty"`
}

// legacySource reconstructs line items from raw payment metadata: a
// serialized item list when present, else a single synthetic item from
// top-level fields.
type legacySource struct {
	resolver   *resolver
	metadata   map[string]string
	totalCents int64
	currency   string
}

func (s *legacySource) resolve(ctx context.Context) (*ResolvedSale, error) {
	sale := &ResolvedSale{
		TotalCents:    s.totalCents,
		Currency:      s.currency,
		TaxCents:      centsFromMetadata(s.metadata[metadataTax]),
		ShippingCents: centsFromMetadata(s.metadata[metadataShipping]),
	}

	if raw, ok := s.metadata[metadataAllItems]; ok && strings.TrimSpace(raw) != "" {
		var items []legacyItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode all_items metadata")
		}
		for _, entry := range items {
			item, err := s.lineFromLegacy(ctx, entry)
			if err != nil {
				return nil, err
			}
			sale.Items = append(sale.Items, item)
		}
		if len(sale.Items) > 0 {
			return sale, nil
		}
	}

	item, err := s.syntheticItem(ctx)
	if err != nil {
		return nil, err
	}
	sale.Items = []LineItem{item}
	return sale, nil
}

func (s *legacySource) lineFromLegacy(ctx context.Context, raw legacyItem) (LineItem, error) {
	if err := s.resolver.validate.Struct(raw); err != nil {
		return LineItem{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid legacy line item")
	}

	item := LineItem{Quantity: raw.Quantity}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	productID, err := uuid.Parse(raw.ProductID)
	if err != nil {
		return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed product id in legacy item")
	}
	item.ProductID = productID

	sellerID, err := uuid.Parse(raw.SellerID)
	if err != nil {
		return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed seller id in legacy item")
	}
	item.SellerID = sellerID

	if raw.VariantID != "" {
		variantID, err := uuid.Parse(raw.VariantID)
		if err != nil {
			return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed variant id in legacy item")
		}
		item.VariantID = &variantID
	}

	unitPrice, err := decimalFromNumber(raw.UnitPrice)
	if err != nil || !unitPrice.IsPositive() {
		return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed unit price in legacy item")
	}
	item.UnitPriceCents = money.Cents(unitPrice)

	s.resolver.applyLegacyAsk(&item, raw.SellerAsk)

	if raw.CommissionRate != "" {
		rate, err := decimalFromNumber(raw.CommissionRate)
		if err != nil {
			return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed commission rate in legacy item")
		}
		item.CommissionRate = rate
	}

	if raw.AffiliateID != "" {
		affiliate, err := s.resolver.profiles.ResolveAffiliate(ctx, raw.AffiliateID)
		if err != nil {
			return item, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve affiliate")
		}
		if affiliate != nil {
			item.AffiliateID = &affiliate.ID
		}
	}

	return item, nil
}

func (s *legacySource) syntheticItem(ctx context.Context) (LineItem, error) {
	md := s.metadata
	item := LineItem{Quantity: 1}

	if raw := strings.TrimSpace(md[metadataProductID]); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed product id in metadata")
		}
		item.ProductID = productID
	}

	rawSeller := strings.TrimSpace(md[metadataSellerID])
	if rawSeller == "" {
		return item, pkgerrors.New(pkgerrors.CodeValidation, "seller id missing from metadata")
	}
	sellerID, err := uuid.Parse(rawSeller)
	if err != nil {
		return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed seller id in metadata")
	}
	item.SellerID = sellerID

	if raw := strings.TrimSpace(md[metadataQuantity]); raw != "" {
		if qty, ok := parseQuantity(raw); ok {
			item.Quantity = qty
		}
	}

	unitPrice := decimalFromMetadata(md[metadataUnitPrice])
	if unitPrice.IsZero() {
		// The whole charge minus tax/shipping is the only price signal left.
		merch := s.totalCents - centsFromMetadata(md[metadataTax]) - centsFromMetadata(md[metadataShipping])
		unitPrice = money.FromCents(merch).Div(decimal.NewFromInt(item.Quantity))
	}
	item.UnitPriceCents = money.Cents(money.RoundCents(unitPrice))

	if raw := md[metadataSellerAsk]; raw != "" {
		s.resolver.applyLegacyAsk(&item, json.Number(raw))
	} else {
		s.resolver.applyLegacyAsk(&item, "")
	}

	if raw := md[metadataRate]; raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return item, pkgerrors.New(pkgerrors.CodeValidation, "malformed commission rate in metadata")
		}
		item.CommissionRate = rate
	}

	if raw := strings.TrimSpace(md[metadataAffiliate]); raw != "" {
		affiliate, err := s.resolver.profiles.ResolveAffiliate(ctx, raw)
		if err != nil {
			return item, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve affiliate")
		}
		if affiliate != nil {
			item.AffiliateID = &affiliate.ID
		}
	}

	return item, nil
}

// applyLegacyAsk fills the seller ask, estimating it from the unit price
// when the metadata carries none. The estimate is an approximation kept
// for older data shapes, never ground truth.
func (r *resolver) applyLegacyAsk(item *LineItem, raw json.Number) {
	if raw != "" {
		if ask, err := decimalFromNumber(raw); err == nil && ask.IsPositive() {
			item.SellerAskCents = money.Cents(ask)
			return
		}
	}
	estimated := money.Percent(money.FromCents(item.UnitPriceCents), decimal.NewFromInt(r.cfg.LegacyAskPercent))
	item.SellerAskCents = money.Cents(money.RoundCents(estimated))
	item.AskEstimated = true
}

// computeSplits turns resolved line items into cent amounts. Each amount
// is rounded half-up exactly once at the line level; precomputed amounts
// pass through untouched.
func computeSplits(cfg config.SettlementConfig, items []LineItem) []lineSplit {
	splits := make([]lineSplit, 0, len(items))
	for _, item := range items {
		splits = append(splits, computeLine(cfg, item))
	}
	return splits
}

func computeLine(cfg config.SettlementConfig, item LineItem) lineSplit {
	qty := decimal.NewFromInt(item.Quantity)
	ask := money.FromCents(item.SellerAskCents)
	unit := money.FromCents(item.UnitPriceCents)

	split := lineSplit{Item: item}
	split.SellerCents = money.Cents(money.RoundCents(ask.Mul(qty)))

	switch {
	case item.AffiliateAmountCents != nil:
		split.AffiliateCents = *item.AffiliateAmountCents
	case item.AffiliateID != nil && item.CommissionRate.IsPositive():
		split.AffiliateCents = money.Cents(money.RoundCents(money.Percent(ask, item.CommissionRate).Mul(qty)))
	}

	if item.PlatformFeeCents != nil {
		split.PlatformCents = *item.PlatformFeeCents
	} else {
		perUnit := money.Percent(ask, decimal.NewFromInt(cfg.PlatformPercent))
		if item.SellerAskCents > 0 && item.SellerAskCents <= cfg.SurchargeThresholdCents {
			perUnit = perUnit.Add(money.FromCents(cfg.SurchargeCents))
		}
		split.PlatformCents = money.Cents(money.RoundCents(perUnit.Mul(qty)))
	}

	if item.ProcessingFeeCents != nil {
		split.ProcessingCents = *item.ProcessingFeeCents
	} else {
		perUnit := money.Percent(unit, decimal.NewFromFloat(cfg.ProcessingPercent)).
			Add(money.FromCents(cfg.ProcessingFixedCents))
		split.ProcessingCents = money.Cents(money.RoundCents(perUnit.Mul(qty)))
	}

	return split
}

func decimalFromNumber(n json.Number) (decimal.Decimal, error) {
	return decimal.NewFromString(n.String())
}

func decimalFromMetadata(raw string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func centsFromMetadata(raw string) int64 {
	return money.Cents(money.RoundCents(decimalFromMetadata(raw)))
}

func parseQuantity(raw string) (int64, bool) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	qty := value.IntPart()
	if qty < 1 {
		return 0, false
	}
	return qty, true
}
