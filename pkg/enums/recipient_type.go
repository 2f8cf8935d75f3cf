package enums

import "fmt"

// RecipientType identifies which payout rail a distribution row belongs to.
// Fundraisers and recruiter overrides are paid on the affiliate rail.
type RecipientType string

const (
	RecipientTypeSeller    RecipientType = "seller"
	RecipientTypeAffiliate RecipientType = "affiliate"
	RecipientTypePlatform  RecipientType = "platform"
)

var validRecipientTypes = []RecipientType{
	RecipientTypeSeller,
	RecipientTypeAffiliate,
	RecipientTypePlatform,
}

// String implements fmt.Stringer.
func (r RecipientType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RecipientType.
func (r RecipientType) IsValid() bool {
	for _, candidate := range validRecipientTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecipientType converts raw input into a RecipientType.
func ParseRecipientType(value string) (RecipientType, error) {
	for _, candidate := range validRecipientTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recipient type %q", value)
}
