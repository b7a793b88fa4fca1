// models/wallet.go
package models

const (
	TxTypeDeposit          = "deposit"
	TxTypeWithdrawal       = "withdrawal"
	TxTypeBet              = "bet"
	TxTypeWin              = "win"
	TxTypeReferralBonus    = "referral_bonus"
	TxTypeReferralEarnings = "referral_earnings"
	TxTypeAdminCredit      = "admin_credit"

	TxStatusCompleted = "completed"
)

// TokenWallet holds the running balance. Mutated only inside a DB
// transaction together with a TokenTransaction row — the balance is
// never adjusted without a ledger entry.
type TokenWallet struct {
	ID      string  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID  string  `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Balance float64 `json:"balance" gorm:"not null;default:0"`

	Timestamps
}

// TokenTransaction is an immutable append-only ledger record.
type TokenTransaction struct {
	ID          string  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string  `json:"user_id" gorm:"type:uuid;index;not null"`
	Type        string  `json:"type" gorm:"not null"` // deposit | withdrawal | bet | win | referral_bonus | referral_earnings | admin_credit
	Status      string  `json:"status" gorm:"default:'completed'"`
	Amount      float64 `json:"amount" gorm:"not null"` // stored unsigned; sign applied at read time
	Description string  `json:"description"`

	RelatedBetID  *string `json:"related_bet_id,omitempty" gorm:"type:uuid"`
	RelatedUserID *string `json:"related_user_id,omitempty" gorm:"type:uuid"`

	Timestamps
}
