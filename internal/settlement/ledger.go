package settlement

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/config"
	"github.com/beezio/settlement-backend/pkg/db/models"
	"github.com/beezio/settlement-backend/pkg/enums"
)

// holdReasonSellerDelay gates seller payouts on both the elapsed delay
// and a shipped confirmation checked by the payout batch job.
const holdReasonSellerDelay = "payout_delay_14d_and_shipped"

// buildBreakdown aggregates per-line splits into per-recipient totals.
// Affiliate amounts with no attributable recipient fold into the
// platform total so the merchandise sum stays intact.
func buildBreakdown(sale *ResolvedSale, splits []lineSplit, bonuses []referralBonus, cogs cogsEstimate) breakdown {
	bd := breakdown{
		Splits:          splits,
		SellerTotals:    make(map[uuid.UUID]int64),
		AffiliateTotals: make(map[uuid.UUID]int64),
		ReferralBonuses: bonuses,
		CogsCents:       cogs.TotalCents,
		CogsItemCount:   cogs.ItemCount,
	}

	for _, split := range splits {
		bd.SellerTotals[split.Item.SellerID] += split.SellerCents
		bd.PlatformGrossCents += split.PlatformCents
		bd.ProcessingCents += split.ProcessingCents

		if split.AffiliateCents <= 0 {
			continue
		}
		switch {
		case split.Item.AffiliateID != nil && *split.Item.AffiliateID != uuid.Nil:
			bd.AffiliateTotals[*split.Item.AffiliateID] += split.AffiliateCents
		case sale.FundraiserID != nil && *sale.FundraiserID != uuid.Nil:
			bd.AffiliateTotals[*sale.FundraiserID] += split.AffiliateCents
		default:
			bd.PlatformGrossCents += split.AffiliateCents
		}
	}

	for _, bonus := range bonuses {
		bd.AffiliateTotals[bonus.RecruiterID] += bonus.AmountCents
		bd.ReferralTotalCents += bonus.AmountCents
	}

	return bd
}

// platformNetCents is the platform total after referral carve-outs plus
// the rounding remainder that makes the merchandise conservation exact:
// sellers + affiliate rail + platform + processing == total - tax - shipping.
// The row floors at zero: a cart whose line obligations exceed the
// charge, such as inflated legacy metadata prices, must not mint a
// negative obligation.
func platformNetCents(sale *ResolvedSale, bd breakdown) int64 {
	net := platformResidualCents(sale, bd)
	if net < 0 {
		return 0
	}
	return net
}

// platformResidualCents is the signed platform total before the zero floor.
func platformResidualCents(sale *ResolvedSale, bd breakdown) int64 {
	base := bd.PlatformGrossCents - bd.ReferralTotalCents
	merchandise := sale.TotalCents - sale.TaxCents - sale.ShippingCents

	var sellerTotal, affiliateTotal int64
	for _, cents := range bd.SellerTotals {
		sellerTotal += cents
	}
	for _, cents := range bd.AffiliateTotals {
		affiliateTotal += cents
	}

	remainder := merchandise - sellerTotal - affiliateTotal - base - bd.ProcessingCents
	return base + remainder
}

// buildDistributions produces the batched, append-only obligation rows.
// Row order is deterministic so retries and tests see stable output.
func buildDistributions(now time.Time, cfg config.SettlementConfig, transactionID uuid.UUID, orderID *uuid.UUID, sale *ResolvedSale, bd breakdown) []models.Distribution {
	rows := make([]models.Distribution, 0, len(bd.SellerTotals)+len(bd.AffiliateTotals)+1)

	availableAt := now.AddDate(0, 0, cfg.SellerHoldDays)
	holdReason := holdReasonSellerDelay
	for _, sellerID := range sortedKeys(bd.SellerTotals) {
		id := sellerID
		rows = append(rows, models.Distribution{
			TransactionID: transactionID,
			OrderID:       orderID,
			RecipientType: enums.RecipientTypeSeller,
			RecipientID:   &id,
			AmountCents:   bd.SellerTotals[sellerID],
			Status:        enums.DistributionStatusHeld,
			AvailableAt:   &availableAt,
			HoldReason:    &holdReason,
		})
	}

	for _, affiliateID := range sortedKeys(bd.AffiliateTotals) {
		id := affiliateID
		rows = append(rows, models.Distribution{
			TransactionID: transactionID,
			OrderID:       orderID,
			RecipientType: enums.RecipientTypeAffiliate,
			RecipientID:   &id,
			AmountCents:   bd.AffiliateTotals[affiliateID],
			Status:        enums.DistributionStatusPending,
		})
	}

	rows = append(rows, models.Distribution{
		TransactionID: transactionID,
		OrderID:       orderID,
		RecipientType: enums.RecipientTypePlatform,
		AmountCents:   platformNetCents(sale, bd),
		Status:        enums.DistributionStatusCompleted,
	})

	return rows
}

// buildAllocations produces the advisory accounting rows. Zero amounts
// are skipped; none of these rows affect payouts.
func buildAllocations(transactionID uuid.UUID, sale *ResolvedSale, bd breakdown) []models.Allocation {
	rows := make([]models.Allocation, 0, 7)
	add := func(allocationType enums.AllocationType, cents int64) {
		if cents == 0 {
			return
		}
		rows = append(rows, models.Allocation{
			TransactionID: transactionID,
			Type:          allocationType,
			AmountCents:   cents,
		})
	}

	add(enums.AllocationTypeSalesTax, sale.TaxCents)
	add(enums.AllocationTypeShippingReserve, sale.ShippingCents)
	add(enums.AllocationTypeCOGSReserve, bd.CogsCents)
	if bd.CogsCents > 0 {
		add(enums.AllocationTypePurchasingReserveTotal, bd.CogsCents+sale.ShippingCents)
	}
	add(enums.AllocationTypeBeezioFeeGross, bd.PlatformGrossCents)
	add(enums.AllocationTypeReferrerBonusTotal, bd.ReferralTotalCents)
	add(enums.AllocationTypePlatformRetainMerch, platformNetCents(sale, bd))

	return rows
}

func sortedKeys(totals map[uuid.UUID]int64) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
