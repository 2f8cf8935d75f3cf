package settlement

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beezio/settlement-backend/pkg/config"
	"github.com/beezio/settlement-backend/pkg/enums"
)

func testSettlementConfig() config.SettlementConfig {
	return config.SettlementConfig{
		PlatformPercent:         15,
		SurchargeCents:          100,
		SurchargeThresholdCents: 2000,
		ProcessingPercent:       2.9,
		ProcessingFixedCents:    30,
		ReferralPercent:         5,
		LegacyAskPercent:        70,
		SellerHoldDays:          14,
	}
}

// fiftyDollarSale is a single item sold at $50 with a $40 seller ask and
// a 10% affiliate commission.
func fiftyDollarSale(sellerID, affiliateID uuid.UUID) *ResolvedSale {
	affiliate := affiliateID
	return &ResolvedSale{
		Items: []LineItem{{
			ProductID:      uuid.New(),
			SellerID:       sellerID,
			AffiliateID:    &affiliate,
			UnitPriceCents: 5000,
			Quantity:       1,
			SellerAskCents: 4000,
			CommissionRate: decimal.NewFromInt(10),
		}},
		TotalCents: 5000,
		Currency:   "usd",
	}
}

func TestFiftyDollarSaleWithoutRecruiter(t *testing.T) {
	cfg := testSettlementConfig()
	sellerID := uuid.New()
	affiliateID := uuid.New()
	sale := fiftyDollarSale(sellerID, affiliateID)

	splits := computeSplits(cfg, sale.Items)
	require.Len(t, splits, 1)
	assert.Equal(t, int64(4000), splits[0].SellerCents)
	assert.Equal(t, int64(400), splits[0].AffiliateCents)
	assert.Equal(t, int64(600), splits[0].PlatformCents)
	assert.Equal(t, int64(175), splits[0].ProcessingCents)

	bd := buildBreakdown(sale, splits, nil, cogsEstimate{})
	assert.Equal(t, int64(425), platformNetCents(sale, bd))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	txID := uuid.New()
	rows := buildDistributions(now, cfg, txID, nil, sale, bd)
	require.Len(t, rows, 3)

	seller := rows[0]
	assert.Equal(t, enums.RecipientTypeSeller, seller.RecipientType)
	assert.Equal(t, sellerID, *seller.RecipientID)
	assert.Equal(t, int64(4000), seller.AmountCents)
	assert.Equal(t, enums.DistributionStatusHeld, seller.Status)
	require.NotNil(t, seller.AvailableAt)
	assert.Equal(t, now.AddDate(0, 0, 14), *seller.AvailableAt)
	require.NotNil(t, seller.HoldReason)
	assert.Equal(t, "payout_delay_14d_and_shipped", *seller.HoldReason)

	affiliate := rows[1]
	assert.Equal(t, enums.RecipientTypeAffiliate, affiliate.RecipientType)
	assert.Equal(t, affiliateID, *affiliate.RecipientID)
	assert.Equal(t, int64(400), affiliate.AmountCents)
	assert.Equal(t, enums.DistributionStatusPending, affiliate.Status)
	assert.Nil(t, affiliate.AvailableAt)

	platform := rows[2]
	assert.Equal(t, enums.RecipientTypePlatform, platform.RecipientType)
	assert.Nil(t, platform.RecipientID)
	assert.Equal(t, int64(425), platform.AmountCents)
	assert.Equal(t, enums.DistributionStatusCompleted, platform.Status)

	var payoutTotal int64
	for _, row := range rows {
		payoutTotal += row.AmountCents
	}
	assert.Equal(t, sale.TotalCents, payoutTotal+bd.ProcessingCents)
}

func TestFiftyDollarSaleWithRecruiter(t *testing.T) {
	cfg := testSettlementConfig()
	sellerID := uuid.New()
	affiliateID := uuid.New()
	recruiterID := uuid.New()
	sale := fiftyDollarSale(sellerID, affiliateID)

	splits := computeSplits(cfg, sale.Items)
	bonus := referralBonusCents(cfg, splits[0])
	assert.Equal(t, int64(200), bonus)

	bonuses := []referralBonus{{RecruiterID: recruiterID, RecruitedID: affiliateID, AmountCents: bonus}}
	bd := buildBreakdown(sale, splits, bonuses, cogsEstimate{})
	assert.Equal(t, int64(225), platformNetCents(sale, bd))
	assert.Equal(t, int64(200), bd.AffiliateTotals[recruiterID])
	assert.Equal(t, int64(400), bd.AffiliateTotals[affiliateID])

	rows := buildDistributions(time.Now(), cfg, uuid.New(), nil, sale, bd)
	require.Len(t, rows, 4)

	var total int64
	for _, row := range rows {
		total += row.AmountCents
	}
	assert.Equal(t, sale.TotalCents, total+bd.ProcessingCents)
}

func TestReferralBonusCappedByPlatformFee(t *testing.T) {
	cfg := testSettlementConfig()
	// A high ask with a tiny platform fee: the bonus caps at the fee.
	split := lineSplit{SellerCents: 100000, PlatformCents: 150}
	assert.Equal(t, int64(150), referralBonusCents(cfg, split))

	split = lineSplit{SellerCents: 4000, PlatformCents: 600}
	assert.Equal(t, int64(200), referralBonusCents(cfg, split))

	split = lineSplit{SellerCents: 0, PlatformCents: 600}
	assert.Equal(t, int64(0), referralBonusCents(cfg, split))
}

func TestFundraiserRidesAffiliateRail(t *testing.T) {
	cfg := testSettlementConfig()
	fundraiserID := uuid.New()
	sale := fiftyDollarSale(uuid.New(), uuid.Nil)
	sale.Items[0].AffiliateID = nil
	sale.FundraiserID = &fundraiserID
	// A commission rate without an attributed affiliate yields nothing,
	// so precompute the rail amount the way an intent snapshot would.
	fee := int64(400)
	sale.Items[0].AffiliateAmountCents = &fee

	splits := computeSplits(cfg, sale.Items)
	bd := buildBreakdown(sale, splits, nil, cogsEstimate{})
	assert.Equal(t, int64(400), bd.AffiliateTotals[fundraiserID])
	assert.Equal(t, int64(425), platformNetCents(sale, bd))
}

func TestUnattributedAffiliateAmountFoldsIntoPlatform(t *testing.T) {
	cfg := testSettlementConfig()
	sale := fiftyDollarSale(uuid.New(), uuid.Nil)
	sale.Items[0].AffiliateID = nil
	fee := int64(400)
	sale.Items[0].AffiliateAmountCents = &fee

	splits := computeSplits(cfg, sale.Items)
	bd := buildBreakdown(sale, splits, nil, cogsEstimate{})
	assert.Empty(t, bd.AffiliateTotals)
	assert.Equal(t, int64(1000), bd.PlatformGrossCents)
	assert.Equal(t, int64(825), platformNetCents(sale, bd))
}

func TestConservationOverRandomCarts(t *testing.T) {
	cfg := testSettlementConfig()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		itemCount := 1 + rng.Intn(4)
		items := make([]LineItem, 0, itemCount)
		var merchandise int64
		for j := 0; j < itemCount; j++ {
			unit := int64(100 + rng.Intn(20000))
			ask := int64(float64(unit) * (0.5 + rng.Float64()*0.4))
			qty := int64(1 + rng.Intn(3))
			item := LineItem{
				ProductID:      uuid.New(),
				SellerID:       uuid.New(),
				UnitPriceCents: unit,
				Quantity:       qty,
				SellerAskCents: ask,
			}
			if rng.Intn(2) == 0 {
				affiliateID := uuid.New()
				item.AffiliateID = &affiliateID
				item.CommissionRate = decimal.NewFromInt(int64(5 + rng.Intn(20)))
			}
			items = append(items, item)
			merchandise += unit * qty
		}
		tax := int64(rng.Intn(500))
		shipping := int64(rng.Intn(1500))
		sale := &ResolvedSale{
			Items:         items,
			TaxCents:      tax,
			ShippingCents: shipping,
			TotalCents:    merchandise + tax + shipping,
			Currency:      "usd",
		}

		splits := computeSplits(cfg, sale.Items)
		var bonuses []referralBonus
		if rng.Intn(2) == 0 {
			bonuses = append(bonuses, referralBonus{
				RecruiterID: uuid.New(),
				RecruitedID: items[0].SellerID,
				AmountCents: referralBonusCents(cfg, splits[0]),
			})
		}
		bd := buildBreakdown(sale, splits, bonuses, cogsEstimate{})
		rows := buildDistributions(time.Now(), cfg, uuid.New(), nil, sale, bd)

		var distributed int64
		for _, row := range rows {
			distributed += row.AmountCents
		}
		if residual := platformResidualCents(sale, bd); residual < 0 {
			// Line obligations exceeded the charge, so the platform row
			// floored at zero instead of going negative.
			require.Equal(t, merchandise-residual, distributed+bd.ProcessingCents,
				"cart %d: floored platform row must absorb exactly the shortfall", i)
		} else {
			require.Equal(t, merchandise, distributed+bd.ProcessingCents,
				"cart %d: distributions plus processing must equal merchandise", i)
		}
	}
}

func TestPlatformRowFloorsAtZeroOnInflatedCart(t *testing.T) {
	cfg := testSettlementConfig()
	sellerID := uuid.New()

	// Line prices claim $90 of merchandise against a $10 charge.
	sale := &ResolvedSale{
		Items: []LineItem{{
			ProductID:      uuid.New(),
			SellerID:       sellerID,
			UnitPriceCents: 9000,
			Quantity:       1,
			SellerAskCents: 7000,
		}},
		TotalCents: 1000,
		Currency:   "usd",
	}

	splits := computeSplits(cfg, sale.Items)
	bd := buildBreakdown(sale, splits, nil, cogsEstimate{})
	require.Negative(t, platformResidualCents(sale, bd))
	assert.Equal(t, int64(0), platformNetCents(sale, bd))

	rows := buildDistributions(time.Now(), cfg, uuid.New(), nil, sale, bd)
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.AmountCents, int64(0))
		if row.RecipientType == enums.RecipientTypePlatform {
			assert.Equal(t, int64(0), row.AmountCents)
		}
	}
}

func TestBuildAllocations(t *testing.T) {
	cfg := testSettlementConfig()
	sale := fiftyDollarSale(uuid.New(), uuid.New())
	sale.TaxCents = 300
	sale.ShippingCents = 500
	sale.TotalCents = 5800

	splits := computeSplits(cfg, sale.Items)
	recruiterID := uuid.New()
	bonuses := []referralBonus{{RecruiterID: recruiterID, RecruitedID: uuid.New(), AmountCents: 200}}
	bd := buildBreakdown(sale, splits, bonuses, cogsEstimate{TotalCents: 1200, ItemCount: 1})

	txID := uuid.New()
	rows := buildAllocations(txID, sale, bd)

	byType := make(map[enums.AllocationType]int64)
	for _, row := range rows {
		assert.Equal(t, txID, row.TransactionID)
		byType[row.Type] = row.AmountCents
	}
	assert.Equal(t, int64(300), byType[enums.AllocationTypeSalesTax])
	assert.Equal(t, int64(500), byType[enums.AllocationTypeShippingReserve])
	assert.Equal(t, int64(1200), byType[enums.AllocationTypeCOGSReserve])
	assert.Equal(t, int64(1700), byType[enums.AllocationTypePurchasingReserveTotal])
	assert.Equal(t, int64(600), byType[enums.AllocationTypeBeezioFeeGross])
	assert.Equal(t, int64(200), byType[enums.AllocationTypeReferrerBonusTotal])
	assert.Equal(t, int64(225), byType[enums.AllocationTypePlatformRetainMerch])
}

func TestBuildAllocationsSkipsZeroRows(t *testing.T) {
	cfg := testSettlementConfig()
	sale := fiftyDollarSale(uuid.New(), uuid.New())

	splits := computeSplits(cfg, sale.Items)
	bd := buildBreakdown(sale, splits, nil, cogsEstimate{})
	rows := buildAllocations(uuid.New(), sale, bd)

	for _, row := range rows {
		assert.NotZero(t, row.AmountCents, "zero amount row of type %s", row.Type)
	}
	types := make(map[enums.AllocationType]bool)
	for _, row := range rows {
		types[row.Type] = true
	}
	assert.False(t, types[enums.AllocationTypeSalesTax])
	assert.False(t, types[enums.AllocationTypeShippingReserve])
	assert.False(t, types[enums.AllocationTypeCOGSReserve])
	assert.True(t, types[enums.AllocationTypeBeezioFeeGross])
}
