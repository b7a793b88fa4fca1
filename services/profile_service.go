// services/profile_service.go
package services

import (
	"errors"
	"strings"

	"parier-bet-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileService merges the auth service's identity record with the
// locally mirrored betting stats (rating, win rate, earnings, rank).
type ProfileService struct {
	Auth *AuthServiceClient
	DB   *gorm.DB // nil in fixture mode → stats section omitted
}

func NewProfileService(auth *AuthServiceClient, db *gorm.DB) *ProfileService {
	return &ProfileService{Auth: auth, DB: db}
}

type ProfileStatsResponse struct {
	Rating   float64 `json:"rating"`
	WinRate  float64 `json:"winRate"`
	Earnings float64 `json:"earnings"`
	Rank     int     `json:"rank"`
}

type FullProfileResponse struct {
	ID        string                `json:"id"`
	Username  string                `json:"username"`
	Email     string                `json:"email,omitempty"`
	AvatarURL string                `json:"avatarUrl,omitempty"`
	Verified  bool                  `json:"verified"`
	Roles     []string              `json:"roles"`
	Stats     *ProfileStatsResponse `json:"stats,omitempty"`
}

func (s *ProfileService) GetProfile(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || token == authHeader {
		return sendError(c, fiber.StatusUnauthorized, "Authentication required", "")
	}

	profile, err := s.Auth.GetProfile(token)
	if err != nil {
		return sendError(c, fiber.StatusUnauthorized, "Invalid or expired token", "")
	}

	out := FullProfileResponse{
		ID:        profile.UserID,
		Username:  profile.Username,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
		Verified:  profile.Verified,
		Roles:     profile.Roles,
	}

	if s.DB != nil {
		var mirror models.User
		err := s.DB.Where("external_user_id = ?", profile.UserID).First(&mirror).Error
		if err == nil {
			out.Stats = &ProfileStatsResponse{
				Rating:   mirror.Rating,
				WinRate:  mirror.WinRate,
				Earnings: mirror.Earnings,
				Rank:     mirror.Rank,
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return sendServiceError(c, err)
		}
	}

	return sendSuccess(c, "Profile fetched successfully", out)
}
