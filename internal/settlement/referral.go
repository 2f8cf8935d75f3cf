package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beezio/settlement-backend/pkg/config"
	"github.com/beezio/settlement-backend/pkg/money"
)

// resolveReferrals finds recruiter overrides for each line's sale owner
// and carves the bonus out of the platform fee. The recruiter graph is
// one level deep. The bonus can never exceed the platform's own gross
// fee on the line.
func (s *Service) resolveReferrals(ctx context.Context, splits []lineSplit) ([]referralBonus, error) {
	var bonuses []referralBonus
	for _, split := range splits {
		owner := saleOwner(split.Item)
		if owner == uuid.Nil {
			continue
		}
		recruiter, err := s.profiles.RecruiterOf(ctx, owner)
		if err != nil {
			return nil, err
		}
		if recruiter == nil || recruiter.ID == owner {
			continue
		}
		amount := referralBonusCents(s.cfg, split)
		if amount <= 0 {
			continue
		}
		bonuses = append(bonuses, referralBonus{
			RecruiterID: recruiter.ID,
			RecruitedID: owner,
			AmountCents: amount,
		})
	}
	return bonuses, nil
}

// saleOwner is the attributed affiliate when present, the seller otherwise.
func saleOwner(item LineItem) uuid.UUID {
	if item.AffiliateID != nil && *item.AffiliateID != uuid.Nil {
		return *item.AffiliateID
	}
	return item.SellerID
}

func referralBonusCents(cfg config.SettlementConfig, split lineSplit) int64 {
	raw := money.RoundCents(money.Percent(
		money.FromCents(split.SellerCents),
		decimal.NewFromInt(cfg.ReferralPercent),
	))
	capped := money.Min(raw, money.FromCents(split.PlatformCents))
	return money.Cents(money.Clamp(capped))
}
