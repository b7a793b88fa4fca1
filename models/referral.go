package models

import "time"

// ReferralCode is the shareable 8-char code, one per user.
type ReferralCode struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex;type:uuid;not null" json:"user_id"`
	Code   string `gorm:"uniqueIndex;not null" json:"code"`

	Timestamps
}

// Referral tracks referrals and first-deposit bonuses
type Referral struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID string `gorm:"index;type:uuid;not null" json:"referrer_id"`
	ReferredID string `gorm:"uniqueIndex;type:uuid;not null" json:"referred_id"`

	ReferralCodeUsed string     `gorm:"not null" json:"referral_code_used"`
	FirstDepositID   *string    `gorm:"index" json:"first_deposit_id,omitempty"` // TokenTransaction id of the qualifying deposit
	FirstDepositAmt  float64    `json:"first_deposit_amt,omitempty"`
	BonusAwarded     bool       `json:"bonus_awarded" gorm:"default:false"`
	AwardedAt        *time.Time `json:"awarded_at,omitempty"`

	Timestamps
}

// ReferralEarning is one payout attributed to a referral.
type ReferralEarning struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	ReferralID string  `gorm:"index;type:uuid;not null" json:"referral_id"`
	Amount     float64 `gorm:"not null" json:"amount"`

	Timestamps
}
