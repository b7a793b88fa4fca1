// services/referral_service.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"parier-bet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralBonusAmount is credited to the referrer once the referred
// user makes their first deposit.
const ReferralBonusAmount = 500.0

// GenerateReferralCode returns an 8-char uppercase hex code. Pure
// generation; uniqueness is enforced by the DB unique index with a
// retry loop at the caller.
func GenerateReferralCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := hex.EncodeToString(buf)
	out := make([]byte, len(code))
	for i := 0; i < len(code); i++ {
		ch := code[i]
		if ch >= 'a' && ch <= 'f' {
			ch -= 'a' - 'A'
		}
		out[i] = ch
	}
	return string(out), nil
}

// ReferralService owns codes, attribution rows and earnings. It talks
// to gorm directly — there is no fixture path for referrals, the demo
// frontend never exercised them without a backend.
type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// GetOrCreateCode returns the caller's shareable code, minting one on
// first access.
func (s *ReferralService) getOrCreateCode(userID string) (*models.ReferralCode, error) {
	var code models.ReferralCode
	err := s.DB.Where("user_id = ?", userID).First(&code).Error
	if err == nil {
		return &code, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Collisions on 4 random bytes are rare; three attempts is plenty.
	for attempt := 0; attempt < 3; attempt++ {
		generated, err := GenerateReferralCode()
		if err != nil {
			return nil, err
		}
		code = models.ReferralCode{
			ID:     uuid.NewString(),
			UserID: userID,
			Code:   generated,
		}
		if err := s.DB.Create(&code).Error; err == nil {
			return &code, nil
		}
	}
	return nil, errors.New("could not allocate a unique referral code")
}

type ReferralCodeResponse struct {
	Code      string `json:"code"`
	CreatedAt string `json:"createdAt"`
}

func (s *ReferralService) GetCode(c *fiber.Ctx) error {
	userID := currentUserID(c)

	code, err := s.getOrCreateCode(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Referral code fetched successfully", ReferralCodeResponse{
		Code:      code.Code,
		CreatedAt: code.CreatedAt.UTC().Format(time.RFC3339),
	})
}

type ReferralEntryResponse struct {
	ReferredID    string  `json:"referredId"`
	Username      string  `json:"username,omitempty"`
	BonusAwarded  bool    `json:"bonusAwarded"`
	DepositAmount float64 `json:"depositAmount,omitempty"`
	JoinedAt      string  `json:"joinedAt"`
}

type ReferralStatsResponse struct {
	Code           string                  `json:"code"`
	TotalReferrals int                     `json:"totalReferrals"`
	TotalEarnings  float64                 `json:"totalEarnings"`
	PendingBonuses int                     `json:"pendingBonuses"`
	Referrals      []ReferralEntryResponse `json:"referrals"`
}

func (s *ReferralService) GetStats(c *fiber.Ctx) error {
	userID := currentUserID(c)

	code, err := s.getOrCreateCode(userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	var referrals []models.Referral
	if err := s.DB.Where("referrer_id = ?", userID).
		Order("created_at DESC").
		Find(&referrals).Error; err != nil {
		return sendServiceError(c, err)
	}

	// Resolve usernames from the profile mirror in one query.
	referredIDs := make([]string, len(referrals))
	for i, ref := range referrals {
		referredIDs[i] = ref.ReferredID
	}
	usernames := map[string]string{}
	if len(referredIDs) > 0 {
		var users []models.User
		if err := s.DB.Where("external_user_id IN ?", referredIDs).Find(&users).Error; err != nil {
			return sendServiceError(c, err)
		}
		for _, u := range users {
			usernames[u.ExternalUserID] = u.Username
		}
	}

	stats := ReferralStatsResponse{
		Code:      code.Code,
		Referrals: make([]ReferralEntryResponse, 0, len(referrals)),
	}
	referralIDs := make([]string, 0, len(referrals))
	for _, ref := range referrals {
		stats.TotalReferrals++
		if !ref.BonusAwarded {
			stats.PendingBonuses++
		}
		referralIDs = append(referralIDs, ref.ID)
		stats.Referrals = append(stats.Referrals, ReferralEntryResponse{
			ReferredID:    ref.ReferredID,
			Username:      usernames[ref.ReferredID],
			BonusAwarded:  ref.BonusAwarded,
			DepositAmount: ref.FirstDepositAmt,
			JoinedAt:      ref.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	if len(referralIDs) > 0 {
		var total float64
		if err := s.DB.Model(&models.ReferralEarning{}).
			Where("referral_id IN ?", referralIDs).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			return sendServiceError(c, err)
		}
		stats.TotalEarnings = total
	}

	return sendSuccess(c, "Referral stats fetched successfully", stats)
}

// RegisterReferral attributes a new user to a referrer's code. Invalid
// or self-referential codes are rejected; duplicate attribution for the
// same referred user is a no-op.
type RegisterReferralRequest struct {
	Code string `json:"code"`
}

func (s *ReferralService) RegisterReferral(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req RegisterReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if req.Code == "" {
		return sendError(c, fiber.StatusBadRequest, "Referral code is required", "")
	}

	var code models.ReferralCode
	if err := s.DB.Where("code = ?", req.Code).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sendError(c, fiber.StatusBadRequest, "Unknown referral code", "")
		}
		return sendServiceError(c, err)
	}
	if code.UserID == userID {
		return sendError(c, fiber.StatusBadRequest, "Cannot use your own referral code", "")
	}

	var existing models.Referral
	err := s.DB.Where("referred_id = ?", userID).First(&existing).Error
	if err == nil {
		return sendSuccess(c, "Referral already registered", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return sendServiceError(c, err)
	}

	referral := models.Referral{
		ID:               uuid.NewString(),
		ReferrerID:       code.UserID,
		ReferredID:       userID,
		ReferralCodeUsed: code.Code,
	}
	if err := s.DB.Create(&referral).Error; err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Referral registered", nil)
}
