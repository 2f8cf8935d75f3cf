package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the marketplace identity row shared by buyers, sellers,
// affiliates and fundraisers. ReferredByAffiliateID links a recruited
// member back to the affiliate who brought them in.
type Profile struct {
	ID                    uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email                 string     `gorm:"column:email;not null;uniqueIndex"`
	DisplayName           string     `gorm:"column:display_name"`
	ReferralCode          *string    `gorm:"column:referral_code;uniqueIndex"`
	ReferredByAffiliateID *uuid.UUID `gorm:"column:referred_by_affiliate_id;type:uuid;index"`
	StripeAccountID       *string    `gorm:"column:stripe_account_id"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
