// workers/referral_bonus_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"parier-bet-system/models"
	"parier-bet-system/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralBonusWorker awards the referrer's one-time bonus after the
// referred user's first deposit. Runs as a poll instead of a hook in
// the deposit path so a bonus failure can never fail a deposit.
type ReferralBonusWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewReferralBonusWorker(db *gorm.DB) *ReferralBonusWorker {
	return &ReferralBonusWorker{
		db:       db,
		interval: 1 * time.Minute,
	}
}

func (w *ReferralBonusWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Referral Bonus Worker (first deposits → referrer bonuses)…")
	go w.run(ctx)
}

func (w *ReferralBonusWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.processPending(); err != nil {
				log.Printf("❌ Referral bonus pass failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Referral Bonus Worker stopped")
			return
		}
	}
}

// processPending scans unawarded referrals and settles each one whose
// referred user has made a deposit. Each referral settles in its own
// transaction so one failure doesn't hold up the batch.
func (w *ReferralBonusWorker) processPending() error {
	var pending []models.Referral
	if err := w.db.Where("bonus_awarded = ?", false).Find(&pending).Error; err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	var awarded int
	for _, referral := range pending {
		var deposit models.TokenTransaction
		err := w.db.Where("user_id = ? AND type = ?", referral.ReferredID, models.TxTypeDeposit).
			Order("created_at ASC").
			First(&deposit).Error
		if err == gorm.ErrRecordNotFound {
			continue // no deposit yet
		}
		if err != nil {
			return err
		}

		if err := w.award(referral, deposit); err != nil {
			log.Printf("⚠️ Failed to award referral bonus (referral=%s): %v", referral.ID, err)
			continue
		}
		awarded++
	}

	if awarded > 0 {
		log.Printf("✅ Awarded %d referral bonus(es)", awarded)
	}
	return nil
}

func (w *ReferralBonusWorker) award(referral models.Referral, deposit models.TokenTransaction) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		// Re-check under the transaction; another instance may have
		// settled this referral since the scan.
		var current models.Referral
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", referral.ID).
			First(&current).Error; err != nil {
			return err
		}
		if current.BonusAwarded {
			return nil
		}

		var wallet models.TokenWallet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", current.ReferrerID).
			First(&wallet).Error
		if err == gorm.ErrRecordNotFound {
			wallet = models.TokenWallet{ID: uuid.NewString(), UserID: current.ReferrerID}
			if err := tx.Create(&wallet).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		wallet.Balance += services.ReferralBonusAmount
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}

		entry := models.TokenTransaction{
			ID:            uuid.NewString(),
			UserID:        current.ReferrerID,
			Type:          models.TxTypeReferralBonus,
			Status:        models.TxStatusCompleted,
			Amount:        services.ReferralBonusAmount,
			Description:   "Referral first-deposit bonus",
			RelatedUserID: &current.ReferredID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		earning := models.ReferralEarning{
			ID:         uuid.NewString(),
			ReferralID: current.ID,
			Amount:     services.ReferralBonusAmount,
		}
		if err := tx.Create(&earning).Error; err != nil {
			return err
		}

		now := time.Now()
		current.BonusAwarded = true
		current.AwardedAt = &now
		current.FirstDepositID = &deposit.ID
		current.FirstDepositAmt = deposit.Amount
		return tx.Save(&current).Error
	})
}
