// services/wallet_service.go
package services

import (
	"errors"
	"sync"
	"time"

	"parier-bet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletStore covers the token wallet operations. Amounts in the
// ledger are stored unsigned; outgoing types get their sign at read
// time so the client can render the history without a type table.
type WalletStore interface {
	GetBalance(userID string) (*WalletSummary, error)
	Deposit(userID string, amount float64, description string) (*models.TokenTransaction, error)
	Withdraw(userID string, amount float64, description string) (*models.TokenTransaction, error)
	ListTransactions(userID string, offset, limit int) ([]models.TokenTransaction, int64, error)
}

// WalletSummary is the balance view plus ledger-derived lifetime totals.
type WalletSummary struct {
	Balance        float64
	TotalDeposited float64
	TotalWithdrawn float64
	TotalWon       float64
	TotalSpent     float64
}

// outgoingTxType reports whether a ledger type reduces the balance.
func outgoingTxType(txType string) bool {
	return txType == models.TxTypeWithdrawal || txType == models.TxTypeBet
}

// ---------------------------------------------------------------------------
// gorm implementation

type GormWalletStore struct {
	DB *gorm.DB
}

func NewGormWalletStore(db *gorm.DB) *GormWalletStore {
	return &GormWalletStore{DB: db}
}

func (s *GormWalletStore) GetBalance(userID string) (*WalletSummary, error) {
	var wallet models.TokenWallet
	if err := s.DB.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// No wallet yet — zero summary, no row created on a read.
		return &WalletSummary{}, nil
	}

	var txs []models.TokenTransaction
	if err := s.DB.Where("user_id = ?", userID).Find(&txs).Error; err != nil {
		return nil, err
	}

	summary := &WalletSummary{Balance: wallet.Balance}
	for _, tx := range txs {
		switch tx.Type {
		case models.TxTypeDeposit, models.TxTypeAdminCredit, models.TxTypeReferralBonus, models.TxTypeReferralEarnings:
			summary.TotalDeposited += tx.Amount
		case models.TxTypeWithdrawal:
			summary.TotalWithdrawn += tx.Amount
		case models.TxTypeWin:
			summary.TotalWon += tx.Amount
		case models.TxTypeBet:
			summary.TotalSpent += tx.Amount
		}
	}
	return summary, nil
}

func (s *GormWalletStore) Deposit(userID string, amount float64, description string) (*models.TokenTransaction, error) {
	var created *models.TokenTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockOrCreateWallet(tx, userID)
		if err != nil {
			return err
		}
		wallet.Balance += amount
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}
		created = &models.TokenTransaction{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        models.TxTypeDeposit,
			Status:      models.TxStatusCompleted,
			Amount:      amount,
			Description: description,
		}
		return tx.Create(created).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *GormWalletStore) Withdraw(userID string, amount float64, description string) (*models.TokenTransaction, error) {
	var created *models.TokenTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockOrCreateWallet(tx, userID)
		if err != nil {
			return err
		}
		if wallet.Balance < amount {
			return validationError("Insufficient balance")
		}
		wallet.Balance -= amount
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}
		created = &models.TokenTransaction{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        models.TxTypeWithdrawal,
			Status:      models.TxStatusCompleted,
			Amount:      amount,
			Description: description,
		}
		return tx.Create(created).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *GormWalletStore) ListTransactions(userID string, offset, limit int) ([]models.TokenTransaction, int64, error) {
	var total int64
	if err := s.DB.Model(&models.TokenTransaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.TokenTransaction
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// lockOrCreateWallet fetches the user's wallet under FOR UPDATE,
// creating a zero-balance row on first use.
func lockOrCreateWallet(tx *gorm.DB, userID string) (*models.TokenWallet, error) {
	var wallet models.TokenWallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.TokenWallet{ID: uuid.NewString(), UserID: userID, Balance: 0}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ---------------------------------------------------------------------------
// fixture implementation

type FixtureWalletStore struct {
	mu       sync.Mutex
	balances map[string]float64
	ledger   map[string][]models.TokenTransaction
}

func NewFixtureWalletStore() *FixtureWalletStore {
	return &FixtureWalletStore{
		balances: map[string]float64{},
		ledger:   map[string][]models.TokenTransaction{},
	}
}

func (s *FixtureWalletStore) ensure(userID string) {
	if _, ok := s.balances[userID]; !ok {
		// Demo accounts start funded so join/withdraw flows work out of
		// the box.
		s.balances[userID] = fixtureDemoBalance
		s.ledger[userID] = []models.TokenTransaction{{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        models.TxTypeDeposit,
			Status:      models.TxStatusCompleted,
			Amount:      fixtureDemoBalance,
			Description: "Welcome balance",
			Timestamps:  models.Timestamps{CreatedAt: time.Now()},
		}}
	}
}

func (s *FixtureWalletStore) GetBalance(userID string) (*WalletSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(userID)

	summary := &WalletSummary{Balance: s.balances[userID]}
	for _, tx := range s.ledger[userID] {
		switch tx.Type {
		case models.TxTypeDeposit, models.TxTypeAdminCredit, models.TxTypeReferralBonus, models.TxTypeReferralEarnings:
			summary.TotalDeposited += tx.Amount
		case models.TxTypeWithdrawal:
			summary.TotalWithdrawn += tx.Amount
		case models.TxTypeWin:
			summary.TotalWon += tx.Amount
		case models.TxTypeBet:
			summary.TotalSpent += tx.Amount
		}
	}
	return summary, nil
}

func (s *FixtureWalletStore) Deposit(userID string, amount float64, description string) (*models.TokenTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(userID)

	s.balances[userID] += amount
	tx := models.TokenTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        models.TxTypeDeposit,
		Status:      models.TxStatusCompleted,
		Amount:      amount,
		Description: description,
		Timestamps:  models.Timestamps{CreatedAt: time.Now()},
	}
	s.ledger[userID] = append(s.ledger[userID], tx)
	return &tx, nil
}

func (s *FixtureWalletStore) Withdraw(userID string, amount float64, description string) (*models.TokenTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(userID)

	if s.balances[userID] < amount {
		return nil, validationError("Insufficient balance")
	}
	s.balances[userID] -= amount
	tx := models.TokenTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        models.TxTypeWithdrawal,
		Status:      models.TxStatusCompleted,
		Amount:      amount,
		Description: description,
		Timestamps:  models.Timestamps{CreatedAt: time.Now()},
	}
	s.ledger[userID] = append(s.ledger[userID], tx)
	return &tx, nil
}

func (s *FixtureWalletStore) ListTransactions(userID string, offset, limit int) ([]models.TokenTransaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(userID)

	entries := s.ledger[userID]
	out := make([]models.TokenTransaction, 0, limit)
	for i := len(entries) - 1 - offset; i >= 0 && len(out) < limit; i-- { // newest first
		out = append(out, entries[i])
	}
	return out, int64(len(entries)), nil
}

// debitForBet charges a bet stake against the wallet and records the
// bet ledger row, so demo joins show up in the same balance and
// history the wallet endpoints serve.
func (s *FixtureWalletStore) debitForBet(userID string, amount float64, betID, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(userID)

	if s.balances[userID] < amount {
		return validationError("Insufficient balance")
	}
	s.balances[userID] -= amount
	relatedBetID := betID
	tx := models.TokenTransaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         models.TxTypeBet,
		Status:       models.TxStatusCompleted,
		Amount:       amount,
		Description:  description,
		RelatedBetID: &relatedBetID,
		Timestamps:   models.Timestamps{CreatedAt: time.Now()},
	}
	s.ledger[userID] = append(s.ledger[userID], tx)
	return nil
}

func (s *FixtureWalletStore) balanceOf(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(userID)
	return s.balances[userID]
}

// ---------------------------------------------------------------------------
// service

type WalletService struct {
	Store WalletStore
}

func NewWalletService(store WalletStore) *WalletService {
	return &WalletService{Store: store}
}

type WalletAmountRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type BalanceResponse struct {
	UserID         string  `json:"userId"`
	Balance        float64 `json:"balance"`
	TotalDeposited float64 `json:"totalDeposited"`
	TotalWithdrawn float64 `json:"totalWithdrawn"`
	TotalWon       float64 `json:"totalWon"`
	TotalSpent     float64 `json:"totalSpent"`
}

type TransactionResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"` // signed: withdrawal/bet negative
	Description  string  `json:"description,omitempty"`
	RelatedBetID *string `json:"relatedBetId,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func buildTransactionResponse(tx models.TokenTransaction) TransactionResponse {
	amount := tx.Amount
	if outgoingTxType(tx.Type) {
		amount = -amount
	}
	return TransactionResponse{
		ID:           tx.ID,
		Type:         tx.Type,
		Status:       tx.Status,
		Amount:       amount,
		Description:  tx.Description,
		RelatedBetID: tx.RelatedBetID,
		CreatedAt:    tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *WalletService) GetBalance(c *fiber.Ctx) error {
	userID := currentUserID(c)

	summary, err := s.Store.GetBalance(userID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Balance fetched successfully", BalanceResponse{
		UserID:         userID,
		Balance:        summary.Balance,
		TotalDeposited: summary.TotalDeposited,
		TotalWithdrawn: summary.TotalWithdrawn,
		TotalWon:       summary.TotalWon,
		TotalSpent:     summary.TotalSpent,
	})
}

func (s *WalletService) Deposit(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req WalletAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if req.Amount <= 0 {
		return sendError(c, fiber.StatusBadRequest, "Amount must be positive", "")
	}
	if req.Description == "" {
		req.Description = "Token deposit"
	}

	tx, err := s.Store.Deposit(userID, req.Amount, req.Description)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Deposit completed", buildTransactionResponse(*tx))
}

func (s *WalletService) Withdraw(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req WalletAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if req.Amount <= 0 {
		return sendError(c, fiber.StatusBadRequest, "Amount must be positive", "")
	}
	if req.Description == "" {
		req.Description = "Token withdrawal"
	}

	tx, err := s.Store.Withdraw(userID, req.Amount, req.Description)
	if err != nil {
		return sendServiceError(c, err)
	}
	return sendSuccess(c, "Withdrawal completed", buildTransactionResponse(*tx))
}

func (s *WalletService) GetTransactions(c *fiber.Ctx) error {
	userID := currentUserID(c)

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	txs, total, err := s.Store.ListTransactions(userID, offset, limit)
	if err != nil {
		return sendServiceError(c, err)
	}
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = buildTransactionResponse(tx)
	}
	return sendPaginated(c, out, len(out), total)
}
