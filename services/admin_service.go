// services/admin_service.go
package services

import (
	"fmt"
	"sync"
	"time"

	"parier-bet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Targeting rules for bulk token credits.
const (
	CreditRuleAll        = "all"
	CreditRuleNewUsers   = "new_users"
	CreditRuleLowBalance = "low_balance"
	CreditRuleActive     = "active"
)

const (
	defaultNewUserDays   = 30
	defaultMaxBalance    = 5000.0
	defaultMinBetsPlaced = 1
)

type CreditParams struct {
	Days       int     // new_users: joined within the last N days
	MaxBalance float64 // low_balance: balance strictly below this
	MinBets    int     // active: at least this many bets placed
}

// CreditCandidate is the per-user view the rules select over. A nil
// Balance means the user has no wallet yet — low_balance treats that
// as qualifying.
type CreditCandidate struct {
	UserID     string
	Username   string
	JoinedAt   time.Time
	Balance    *float64
	BetsPlaced int
}

// ResolveCreditTargets filters candidates by rule. Unknown rules are
// rejected rather than silently matching nobody.
func ResolveCreditTargets(rule string, params CreditParams, candidates []CreditCandidate, now time.Time) ([]CreditCandidate, error) {
	if params.Days <= 0 {
		params.Days = defaultNewUserDays
	}
	if params.MaxBalance <= 0 {
		params.MaxBalance = defaultMaxBalance
	}
	if params.MinBets <= 0 {
		params.MinBets = defaultMinBetsPlaced
	}

	var match func(CreditCandidate) bool
	switch rule {
	case CreditRuleAll:
		match = func(CreditCandidate) bool { return true }
	case CreditRuleNewUsers:
		cutoff := now.AddDate(0, 0, -params.Days)
		match = func(cand CreditCandidate) bool { return !cand.JoinedAt.Before(cutoff) }
	case CreditRuleLowBalance:
		// strict: a balance equal to the threshold does not qualify
		match = func(cand CreditCandidate) bool {
			return cand.Balance == nil || *cand.Balance < params.MaxBalance
		}
	case CreditRuleActive:
		match = func(cand CreditCandidate) bool { return cand.BetsPlaced >= params.MinBets }
	default:
		return nil, validationError(fmt.Sprintf("Unknown credit rule: %s", rule))
	}

	var out []CreditCandidate
	for _, cand := range candidates {
		if match(cand) {
			out = append(out, cand)
		}
	}
	return out, nil
}

// CreditStore loads targeting data and applies the credits, reporting
// each user's post-credit balance.
type CreditStore interface {
	LoadCandidates() ([]CreditCandidate, error)
	CreditUsers(userIDs []string, amount float64, description string) (map[string]float64, error)
}

// ---------------------------------------------------------------------------
// gorm implementation

type GormCreditStore struct {
	DB *gorm.DB
}

func NewGormCreditStore(db *gorm.DB) *GormCreditStore {
	return &GormCreditStore{DB: db}
}

func (s *GormCreditStore) LoadCandidates() ([]CreditCandidate, error) {
	var users []models.User
	if err := s.DB.Find(&users).Error; err != nil {
		return nil, err
	}

	var wallets []models.TokenWallet
	if err := s.DB.Find(&wallets).Error; err != nil {
		return nil, err
	}
	balances := make(map[string]float64, len(wallets))
	for _, w := range wallets {
		balances[w.UserID] = w.Balance
	}

	type betCount struct {
		UserID string
		Total  int
	}
	var counts []betCount
	if err := s.DB.Model(&models.BetParticipation{}).
		Select("user_id, COUNT(*) as total").
		Group("user_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	placed := make(map[string]int, len(counts))
	for _, row := range counts {
		placed[row.UserID] = row.Total
	}

	out := make([]CreditCandidate, len(users))
	for i, u := range users {
		cand := CreditCandidate{
			UserID:     u.ExternalUserID,
			Username:   u.Username,
			JoinedAt:   u.JoinedDate,
			BetsPlaced: placed[u.ExternalUserID],
		}
		if bal, ok := balances[u.ExternalUserID]; ok {
			b := bal
			cand.Balance = &b
		}
		out[i] = cand
	}
	return out, nil
}

// CreditUsers applies the whole batch in one transaction: a wallet
// bump plus an admin_credit ledger row per user, all or nothing.
func (s *GormCreditStore) CreditUsers(userIDs []string, amount float64, description string) (map[string]float64, error) {
	newBalances := make(map[string]float64, len(userIDs))
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range userIDs {
			var wallet models.TokenWallet
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ?", userID).
				First(&wallet).Error
			if err == gorm.ErrRecordNotFound {
				wallet = models.TokenWallet{ID: uuid.NewString(), UserID: userID}
				if err := tx.Create(&wallet).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			wallet.Balance += amount
			if err := tx.Save(&wallet).Error; err != nil {
				return err
			}
			newBalances[userID] = wallet.Balance
			entry := models.TokenTransaction{
				ID:          uuid.NewString(),
				UserID:      userID,
				Type:        models.TxTypeAdminCredit,
				Status:      models.TxStatusCompleted,
				Amount:      amount,
				Description: description,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newBalances, nil
}

// ---------------------------------------------------------------------------
// fixture implementation

type FixtureCreditStore struct {
	mu         sync.Mutex
	candidates []CreditCandidate
	balances   map[string]float64
}

func NewFixtureCreditStore(candidates []CreditCandidate) *FixtureCreditStore {
	store := &FixtureCreditStore{
		candidates: candidates,
		balances:   map[string]float64{},
	}
	for _, cand := range candidates {
		if cand.Balance != nil {
			store.balances[cand.UserID] = *cand.Balance
		}
	}
	return store
}

func (s *FixtureCreditStore) LoadCandidates() ([]CreditCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CreditCandidate, len(s.candidates))
	for i, cand := range s.candidates {
		if bal, ok := s.balances[cand.UserID]; ok {
			b := bal
			cand.Balance = &b
		}
		out[i] = cand
	}
	return out, nil
}

func (s *FixtureCreditStore) CreditUsers(userIDs []string, amount float64, description string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newBalances := make(map[string]float64, len(userIDs))
	for _, userID := range userIDs {
		s.balances[userID] += amount
		newBalances[userID] = s.balances[userID]
	}
	return newBalances, nil
}

// ---------------------------------------------------------------------------
// service

type AdminService struct {
	Store CreditStore
}

func NewAdminService(store CreditStore) *AdminService {
	return &AdminService{Store: store}
}

type CreditTokensRequest struct {
	Rule        string  `json:"rule"`
	Amount      float64 `json:"amount"`
	Days        int     `json:"days"`
	MaxBalance  float64 `json:"max_balance"`
	MinBets     int     `json:"min_bets"`
	Description string  `json:"description"`
}

type CreditTargetResponse struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
}

type CreditPreviewResponse struct {
	Rule         string                 `json:"rule"`
	MatchedUsers []CreditTargetResponse `json:"matchedUsers"`
	Count        int                    `json:"count"`
	TotalAmount  float64                `json:"totalAmount"`
}

func buildCreditPreview(rule string, amount float64, targets []CreditCandidate) CreditPreviewResponse {
	matched := make([]CreditTargetResponse, len(targets))
	for i, cand := range targets {
		entry := CreditTargetResponse{UserID: cand.UserID, Username: cand.Username}
		if cand.Balance != nil {
			entry.Balance = *cand.Balance
		}
		matched[i] = entry
	}
	return CreditPreviewResponse{
		Rule:         rule,
		MatchedUsers: matched,
		Count:        len(matched),
		TotalAmount:  amount * float64(len(matched)),
	}
}

func (s *AdminService) resolve(rule string, params CreditParams) ([]CreditCandidate, error) {
	candidates, err := s.Store.LoadCandidates()
	if err != nil {
		return nil, err
	}
	return ResolveCreditTargets(rule, params, candidates, time.Now())
}

// PreviewCredit answers "who would this hit" without mutating anything.
func (s *AdminService) PreviewCredit(c *fiber.Ctx) error {
	rule := c.Query("rule", CreditRuleAll)
	amount := c.QueryFloat("amount", 0)
	params := CreditParams{
		Days:       c.QueryInt("days", 0),
		MaxBalance: c.QueryFloat("max_balance", 0),
		MinBets:    c.QueryInt("min_bets", 0),
	}

	targets, err := s.resolve(rule, params)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Credit preview generated", buildCreditPreview(rule, amount, targets))
}

func (s *AdminService) ApplyCredit(c *fiber.Ctx) error {
	var req CreditTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if req.Rule == "" {
		req.Rule = CreditRuleAll
	}
	if req.Amount <= 0 {
		return sendError(c, fiber.StatusBadRequest, "Amount must be positive", "")
	}
	if req.Description == "" {
		req.Description = "Admin token credit"
	}

	targets, err := s.resolve(req.Rule, CreditParams{
		Days:       req.Days,
		MaxBalance: req.MaxBalance,
		MinBets:    req.MinBets,
	})
	if err != nil {
		return sendServiceError(c, err)
	}
	if len(targets) == 0 {
		return sendError(c, fiber.StatusBadRequest, "No users match the selected rule", "")
	}

	userIDs := make([]string, len(targets))
	for i, cand := range targets {
		userIDs[i] = cand.UserID
	}
	newBalances, err := s.Store.CreditUsers(userIDs, req.Amount, req.Description)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, fmt.Sprintf("Credited %d users", len(targets)), fiber.Map{
		"rule":          req.Rule,
		"amount":        req.Amount,
		"creditedCount": len(targets),
		"creditedUsers": buildCreditPreview(req.Rule, req.Amount, targets).MatchedUsers,
		"newBalances":   newBalances,
		"totalAmount":   req.Amount * float64(len(targets)),
	})
}
