package services

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func creditCandidate(userID string, balance float64, joinedDaysAgo, betsPlaced int, now time.Time) CreditCandidate {
	b := balance
	return CreditCandidate{
		UserID:     userID,
		Username:   userID,
		JoinedAt:   now.AddDate(0, 0, -joinedDaysAgo),
		Balance:    &b,
		BetsPlaced: betsPlaced,
	}
}

func targetIDs(targets []CreditCandidate) []string {
	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = t.UserID
	}
	return ids
}

func TestResolveCreditTargets_All(t *testing.T) {
	now := time.Now()
	candidates := []CreditCandidate{
		creditCandidate("user1", 10000, 400, 3, now),
		creditCandidate("user2", 500, 10, 0, now),
	}

	targets, err := ResolveCreditTargets(CreditRuleAll, CreditParams{}, candidates, now)
	if err != nil {
		t.Fatalf("ResolveCreditTargets: %v", err)
	}
	if len(targets) != 2 {
		t.Errorf("rule=all matched %v, want everyone", targetIDs(targets))
	}
}

func TestResolveCreditTargets_LowBalance(t *testing.T) {
	now := time.Now()
	candidates := []CreditCandidate{
		creditCandidate("user1", 10000, 100, 1, now),
		creditCandidate("user2", 500, 100, 1, now),
		creditCandidate("user3", 3000, 100, 1, now),
	}

	targets, err := ResolveCreditTargets(CreditRuleLowBalance, CreditParams{MaxBalance: 2000}, candidates, now)
	if err != nil {
		t.Fatalf("ResolveCreditTargets: %v", err)
	}
	if len(targets) != 1 || targets[0].UserID != "user2" {
		t.Errorf("low_balance(2000) matched %v, want only user2", targetIDs(targets))
	}
}

func TestResolveCreditTargets_LowBalanceExcludesExactThreshold(t *testing.T) {
	now := time.Now()
	candidates := []CreditCandidate{
		creditCandidate("at-threshold", 2000, 100, 1, now),
		creditCandidate("just-under", 1999.99, 100, 1, now),
	}

	targets, err := ResolveCreditTargets(CreditRuleLowBalance, CreditParams{MaxBalance: 2000}, candidates, now)
	if err != nil {
		t.Fatalf("ResolveCreditTargets: %v", err)
	}
	if len(targets) != 1 || targets[0].UserID != "just-under" {
		t.Errorf("low_balance(2000) matched %v, want only the balance strictly below", targetIDs(targets))
	}
}

func TestResolveCreditTargets_LowBalanceTreatsMissingWalletAsLow(t *testing.T) {
	now := time.Now()
	noWallet := CreditCandidate{UserID: "user4", Username: "user4", JoinedAt: now}
	candidates := []CreditCandidate{
		creditCandidate("user1", 9000, 100, 1, now),
		noWallet,
	}

	targets, err := ResolveCreditTargets(CreditRuleLowBalance, CreditParams{MaxBalance: 2000}, candidates, now)
	if err != nil {
		t.Fatalf("ResolveCreditTargets: %v", err)
	}
	if len(targets) != 1 || targets[0].UserID != "user4" {
		t.Errorf("matched %v, want only the wallet-less user", targetIDs(targets))
	}
}

func TestResolveCreditTargets_NewUsers(t *testing.T) {
	now := time.Now()
	candidates := []CreditCandidate{
		creditCandidate("veteran", 100, 365, 10, now),
		creditCandidate("rookie", 100, 5, 0, now),
	}

	// Default window is 30 days.
	targets, err := ResolveCreditTargets(CreditRuleNewUsers, CreditParams{}, candidates, now)
	if err != nil {
		t.Fatalf("ResolveCreditTargets: %v", err)
	}
	if len(targets) != 1 || targets[0].UserID != "rookie" {
		t.Errorf("new_users matched %v, want only rookie", targetIDs(targets))
	}
}

func TestResolveCreditTargets_Active(t *testing.T) {
	now := time.Now()
	candidates := []CreditCandidate{
		creditCandidate("lurker", 100, 50, 0, now),
		creditCandidate("bettor", 100, 50, 4, now),
	}

	targets, err := ResolveCreditTargets(CreditRuleActive, CreditParams{MinBets: 2}, candidates, now)
	if err != nil {
		t.Fatalf("ResolveCreditTargets: %v", err)
	}
	if len(targets) != 1 || targets[0].UserID != "bettor" {
		t.Errorf("active(2) matched %v, want only bettor", targetIDs(targets))
	}
}

func TestResolveCreditTargets_UnknownRule(t *testing.T) {
	if _, err := ResolveCreditTargets("everyone", CreditParams{}, nil, time.Now()); err == nil {
		t.Error("unknown rule must be rejected")
	}
}

func TestFixtureCreditStore_AppliesCredits(t *testing.T) {
	now := time.Now()
	store := NewFixtureCreditStore([]CreditCandidate{
		creditCandidate("user1", 100, 10, 0, now),
		creditCandidate("user2", 200, 10, 0, now),
	})

	newBalances, err := store.CreditUsers([]string{"user1"}, 1000, "promo")
	if err != nil {
		t.Fatalf("CreditUsers: %v", err)
	}
	if newBalances["user1"] != 1100 {
		t.Errorf("newBalances[user1] = %v, want 1100", newBalances["user1"])
	}

	candidates, err := store.LoadCandidates()
	if err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	for _, cand := range candidates {
		switch cand.UserID {
		case "user1":
			if cand.Balance == nil || *cand.Balance != 1100 {
				t.Errorf("user1 balance after credit = %v, want 1100", cand.Balance)
			}
		case "user2":
			if cand.Balance == nil || *cand.Balance != 200 {
				t.Errorf("user2 balance = %v, want unchanged 200", cand.Balance)
			}
		}
	}
}

func newAdminTestApp() *fiber.App {
	now := time.Now()
	svc := NewAdminService(NewFixtureCreditStore([]CreditCandidate{
		creditCandidate("user1", 100, 10, 0, now),
		creditCandidate("user2", 8000, 10, 2, now),
	}))

	app := fiber.New()
	app.Get("/credit-tokens", svc.PreviewCredit)
	app.Post("/credit-tokens", svc.ApplyCredit)
	return app
}

func TestAdmin_PreviewIncludesCount(t *testing.T) {
	app := newAdminTestApp()

	status, raw := walletCall(t, app, "GET", "/credit-tokens?rule=low_balance&max_balance=2000&amount=500", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rawCount, ok := envelope.Data["count"]
	if !ok {
		t.Fatal("preview payload has no count key")
	}
	var count int
	if err := json.Unmarshal(rawCount, &count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestAdmin_ApplyReportsNewBalances(t *testing.T) {
	app := newAdminTestApp()

	status, raw := walletCall(t, app, "POST", "/credit-tokens", map[string]interface{}{
		"rule":   "all",
		"amount": 1000,
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	var envelope struct {
		Data struct {
			CreditedCount int                `json:"creditedCount"`
			NewBalances   map[string]float64 `json:"newBalances"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.CreditedCount != 2 {
		t.Errorf("creditedCount = %d, want 2", envelope.Data.CreditedCount)
	}
	if got := envelope.Data.NewBalances["user1"]; got != 1100 {
		t.Errorf("newBalances[user1] = %v, want 1100", got)
	}
	if got := envelope.Data.NewBalances["user2"]; got != 9000 {
		t.Errorf("newBalances[user2] = %v, want 9000", got)
	}
}
