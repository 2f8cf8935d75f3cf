package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is the shape both sale sources resolve into. Precomputed
// line-level amounts, when present, are authoritative and skip
// re-derivation.
type LineItem struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	SellerID       uuid.UUID
	AffiliateID    *uuid.UUID
	UnitPriceCents int64
	Quantity       int64
	// SellerAskCents is the per-unit seller ask. AskEstimated marks the
	// legacy fallback where the ask was approximated from the unit price.
	SellerAskCents int64
	AskEstimated   bool
	CommissionRate decimal.Decimal

	// Line-level precomputed amounts (already scaled by quantity).
	AffiliateAmountCents *int64
	PlatformFeeCents     *int64
	ProcessingFeeCents   *int64
}

// ResolvedSale is the output contract of the split resolver: line items
// plus the aggregate amounts that sit outside the merchandise split.
type ResolvedSale struct {
	IntentID      *uuid.UUID
	Items         []LineItem
	TaxCents      int64
	ShippingCents int64
	TotalCents    int64
	Currency      string
	// FundraiserID rides the affiliate rail when an affiliate is absent.
	FundraiserID *uuid.UUID
	ReferrerID   *uuid.UUID
}

// lineSplit carries the computed per-line amounts, all in cents and
// already rounded once at the line level.
type lineSplit struct {
	Item            LineItem
	SellerCents     int64
	AffiliateCents  int64
	PlatformCents   int64
	ProcessingCents int64
}

// referralBonus is one recruiter override carved from the platform fee.
type referralBonus struct {
	RecruiterID uuid.UUID
	RecruitedID uuid.UUID
	AmountCents int64
}

// breakdown aggregates the whole transaction before ledger rows are built.
type breakdown struct {
	Splits             []lineSplit
	SellerTotals       map[uuid.UUID]int64
	AffiliateTotals    map[uuid.UUID]int64
	PlatformGrossCents int64
	ProcessingCents    int64
	ReferralBonuses    []referralBonus
	ReferralTotalCents int64
	CogsCents          int64
	CogsItemCount      int
}
