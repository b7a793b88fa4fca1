// services/bet_service.go
package services

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"parier-bet-system/models"
	"parier-bet-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type BetService struct {
	Store    BetStore
	Fallback *FixtureBetStore // read-path degradation when the live store errors
	DB       *gorm.DB         // nil in fixture mode; used by the deadline scheduler
}

func NewBetService(store BetStore, db *gorm.DB) *BetService {
	svc := &BetService{Store: store, DB: db}
	if fixture, ok := store.(*FixtureBetStore); ok {
		svc.Fallback = fixture
	} else {
		svc.Fallback = NewFixtureBetStore()
	}
	return svc
}

// storeError reports an infrastructure failure, as opposed to a
// client-facing rejection (validation, not-found) that must surface.
func storeError(err error) bool {
	return err != nil && GetServiceError(err) == nil && !errors.Is(err, ErrNotFound)
}

// ===== wire shapes (camelCase, the contract the web client consumes) =====

type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Avatar     string    `json:"avatar,omitempty"`
	Rating     float64   `json:"rating"`
	WinRate    float64   `json:"winRate"`
	Verified   bool      `json:"verified"`
	JoinedDate time.Time `json:"joinedDate"`
	Location   string    `json:"location,omitempty"`
}

type CategoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type BetResponse struct {
	ID                 string           `json:"id"`
	Author             UserResponse     `json:"author"`
	Title              string           `json:"title"`
	Slug               string           `json:"slug,omitempty"`
	ShortDescription   string           `json:"shortDescription"`
	FullDescription    string           `json:"fullDescription"`
	Outcome            string           `json:"outcome"`
	Category           CategoryResponse `json:"category"`
	BetAmount          float64          `json:"betAmount"`
	Coefficient        float64          `json:"coefficient"`
	PotentialWinnings  float64          `json:"potentialWinnings"` // derived: betAmount × coefficient
	Status             string           `json:"status"`
	Deadline           time.Time        `json:"deadline"`
	EventDate          *time.Time       `json:"eventDate,omitempty"`
	Location           string           `json:"location,omitempty"`
	VerificationSource string           `json:"verificationSource,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	Tags               []string         `json:"tags"`
	CommentsCount     int64 `json:"commentsCount"`
	BetsCount         int64 `json:"betsCount"`
	LikesCount        int64 `json:"likesCount"`
	LikedByMe         bool  `json:"likedByMe"`
}

type CommentResponse struct {
	ID         string       `json:"id"`
	Author     UserResponse `json:"author"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	LikesCount int64        `json:"likesCount"`
	LikedByMe  bool         `json:"likedByMe"`
}

func buildUserResponse(u models.User) UserResponse {
	res := UserResponse{
		ID:         u.ExternalUserID,
		Username:   u.Username,
		Rating:     u.Rating,
		WinRate:    u.WinRate,
		Verified:   u.Verified,
		JoinedDate: u.JoinedDate,
	}
	if u.AvatarURL != nil {
		res.Avatar = *u.AvatarURL
	}
	if u.Location != nil {
		res.Location = *u.Location
	}
	return res
}

func buildBetResponse(locale string, row BetRow) BetResponse {
	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	return BetResponse{
		ID:               row.Bet.ID,
		Author:           buildUserResponse(row.Author),
		Title:            row.Bet.Title,
		Slug:             row.Bet.Slug,
		ShortDescription: row.Bet.ShortDescription,
		FullDescription:  row.Bet.FullDescription,
		Outcome:          row.Bet.Outcome,
		Category: CategoryResponse{
			ID:    row.Bet.CategoryID,
			Name:  row.Category.LocalizedName(locale),
			Color: row.Category.Color,
		},
		BetAmount:          row.Bet.Amount,
		Coefficient:        row.Bet.Coefficient,
		PotentialWinnings:  row.Bet.PotentialWinnings(),
		Status:             row.Bet.Status,
		Deadline:           row.Bet.Deadline,
		EventDate:          row.Bet.EventDate,
		Location:           row.Bet.Location,
		VerificationSource: row.Bet.VerificationSource,
		CreatedAt:          row.Bet.CreatedAt,
		Tags:               tags,
		CommentsCount:      row.CommentsCount,
		BetsCount:          row.BetsCount,
		LikesCount:         row.LikesCount,
		LikedByMe:          row.LikedByMe,
	}
}

// ===== list =====

type BetListRequest struct {
	Language   string `json:"language"`
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

// ListBets serves the bet feed: a stored page (category + pagination)
// run through the URL-derived FilterState (predicates, then one sort).
func (s *BetService) ListBets(c *fiber.Ctx) error {
	var req BetListRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	locale := utils.ResolveLocale(req.Language, c.Get("Accept-Language"))
	viewerID := currentUserID(c)

	if req.ID != "" {
		row, err := s.Store.GetBet(req.ID, viewerID)
		if storeError(err) {
			log.Printf("⚠️ [BETS] store lookup failed, serving fixtures: %v", err)
			row, err = s.Fallback.GetBet(req.ID, viewerID)
		}
		if err != nil {
			return sendServiceError(c, err)
		}
		return sendPaginated(c, []BetResponse{buildBetResponse(locale, *row)}, 1, 1)
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	rows, total, err := s.Store.ListBets(req.CategoryID, viewerID, req.Offset, req.Limit)
	if storeError(err) {
		// Feed reads degrade to the fixture set instead of failing.
		log.Printf("⚠️ [BETS] store list failed, serving fixtures: %v", err)
		rows, total, err = s.Fallback.ListBets(req.CategoryID, viewerID, req.Offset, req.Limit)
	}
	if err != nil {
		return sendServiceError(c, err)
	}

	fs := ParseFilterState(queryValues(c))
	rows = fs.Apply(rows, time.Now())

	res := make([]BetResponse, len(rows))
	for i, row := range rows {
		res[i] = buildBetResponse(locale, row)
	}
	return sendPaginated(c, res, len(res), total)
}

// queryValues adapts fiber's query map to url.Values for FilterState.
func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	for key, val := range c.Queries() {
		values.Set(key, val)
	}
	return values
}

// ===== create =====

type BetCreateRequest struct {
	Language           string     `json:"language"`
	Title              string     `json:"title"`
	ShortDescription   string     `json:"short_description"`
	FullDescription    string     `json:"full_description"`
	Outcome            string     `json:"outcome"`
	CategoryID         string     `json:"category_id"`
	TypeID             string     `json:"type_id"`
	Amount             float64    `json:"amount"`
	Coefficient        float64    `json:"coefficient"`
	Deadline           time.Time  `json:"deadline"`
	EventDate          *time.Time `json:"event_date"`
	Location           string     `json:"location"`
	VerificationSource string     `json:"verification_source"`
	Tags               []string   `json:"tags"`
	SourceIDs          []string   `json:"source_ids"`
}

func (s *BetService) CreateBet(c *fiber.Ctx) error {
	var req BetCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	locale := utils.ResolveLocale(req.Language, c.Get("Accept-Language"))
	userID := currentUserID(c)

	// inline form validation — field-keyed messages
	fieldErrors := fiber.Map{}
	if strings.TrimSpace(req.Title) == "" {
		fieldErrors["title"] = "Title is required"
	}
	if req.CategoryID == "" {
		fieldErrors["category_id"] = "Category is required"
	}
	if req.Coefficient <= 1 {
		fieldErrors["coefficient"] = "Coefficient must be greater than 1"
	}
	if req.Amount <= 0 {
		fieldErrors["amount"] = "Amount must be positive"
	}
	if !req.Deadline.After(time.Now()) {
		fieldErrors["deadline"] = "Deadline must be in the future"
	}
	if len(fieldErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "VALIDATION_ERROR",
			"fields":  fieldErrors,
		})
	}

	bet := &models.Bet{
		ID:                 uuid.NewString(),
		AuthorID:           userID,
		Title:              req.Title,
		Slug:               slug.Make(req.Title),
		ShortDescription:   req.ShortDescription,
		FullDescription:    req.FullDescription,
		Outcome:            req.Outcome,
		CategoryID:         req.CategoryID,
		TypeID:             req.TypeID,
		Amount:             req.Amount,
		Coefficient:        req.Coefficient,
		Status:             models.BetStatusOpen,
		Deadline:           req.Deadline,
		EventDate:          req.EventDate,
		Location:           req.Location,
		VerificationSource: req.VerificationSource,
	}

	if err := s.Store.CreateBet(bet, req.Tags, req.SourceIDs); err != nil {
		return sendServiceError(c, err)
	}

	row, err := s.Store.GetBet(bet.ID, userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Bet created successfully", buildBetResponse(locale, *row))
}

// ===== like / unlike =====

// The mutation returns the settled state {liked, likes_count}; the
// count is always previous ± 1, which is what an optimistic client
// keeps or rolls back against.
func (s *BetService) LikeBet(c *fiber.Ctx) error {
	return s.toggleLike(c, true, "Bet liked successfully")
}

func (s *BetService) UnlikeBet(c *fiber.Ctx) error {
	return s.toggleLike(c, false, "Bet unliked successfully")
}

func (s *BetService) toggleLike(c *fiber.Ctx, like bool, message string) error {
	betID := c.Params("bet_id")
	if betID == "" {
		return sendError(c, fiber.StatusBadRequest, "Bet ID is required", "Bet ID is required")
	}
	liked, count, err := s.Store.ToggleLike(betID, currentUserID(c), like)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, message, fiber.Map{
		"liked":       liked,
		"likes_count": count,
	})
}

// ===== comments =====

type CommentListRequest struct {
	Language string `json:"language"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

func (s *BetService) ListComments(c *fiber.Ctx) error {
	betID := c.Params("bet_id")
	if betID == "" {
		return sendError(c, fiber.StatusBadRequest, "Bet ID is required", "Bet ID is required")
	}

	var req CommentListRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	rows, total, err := s.Store.ListComments(betID, currentUserID(c), req.Offset, req.Limit)
	if err != nil {
		return sendServiceError(c, err)
	}

	res := make([]CommentResponse, len(rows))
	for i, row := range rows {
		res[i] = CommentResponse{
			ID:         row.Comment.ID,
			Author:     buildUserResponse(row.Author),
			Content:    row.Comment.Content,
			CreatedAt:  row.Comment.CreatedAt,
			LikesCount: row.LikesCount,
			LikedByMe:  row.LikedByMe,
		}
	}
	return sendPaginated(c, res, len(res), total)
}

type CommentCreateRequest struct {
	Language string `json:"language"`
	Content  string `json:"content"`
}

func (s *BetService) CreateComment(c *fiber.Ctx) error {
	betID := c.Params("bet_id")
	if betID == "" {
		return sendError(c, fiber.StatusBadRequest, "Bet ID is required", "Bet ID is required")
	}

	var req CommentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if strings.TrimSpace(req.Content) == "" {
		return sendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Comment content is required")
	}

	comment := &models.BetComment{
		ID:       uuid.NewString(),
		BetID:    betID,
		AuthorID: currentUserID(c),
		Content:  strings.TrimSpace(req.Content),
	}
	if err := s.Store.CreateComment(comment); err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Comment created successfully", fiber.Map{"id": comment.ID})
}

func (s *BetService) LikeComment(c *fiber.Ctx) error {
	return s.toggleCommentLike(c, true, "Comment liked successfully")
}

func (s *BetService) UnlikeComment(c *fiber.Ctx) error {
	return s.toggleCommentLike(c, false, "Comment unliked successfully")
}

func (s *BetService) toggleCommentLike(c *fiber.Ctx, like bool, message string) error {
	commentID := c.Params("comment_id")
	if commentID == "" {
		return sendError(c, fiber.StatusBadRequest, "Comment ID is required", "Comment ID is required")
	}
	liked, count, err := s.Store.ToggleCommentLike(commentID, currentUserID(c), like)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, message, fiber.Map{
		"liked":       liked,
		"likes_count": count,
	})
}

// ===== join (place a bet) =====

type JoinBetRequest struct {
	Language string  `json:"language"`
	Amount   float64 `json:"amount"`
	Predict  bool    `json:"predict"`
}

func (s *BetService) JoinBet(c *fiber.Ctx) error {
	betID := c.Params("bet_id")
	if betID == "" {
		return sendError(c, fiber.StatusBadRequest, "Bet ID is required", "Bet ID is required")
	}

	var req JoinBetRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	locale := utils.ResolveLocale(req.Language, c.Get("Accept-Language"))

	row, err := s.Store.PlaceBet(betID, currentUserID(c), req.Amount, req.Predict)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Bet placed successfully", buildBetResponse(locale, *row))
}
