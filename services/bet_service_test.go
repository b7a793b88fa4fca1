package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// newBetTestApp wires the bet routes against a fresh fixture store.
// Identity comes from the X-Test-User header instead of the auth
// service, same locals contract the real middleware sets.
func newBetTestApp() (*fiber.App, *FixtureBetStore) {
	store := NewFixtureBetStore()
	svc := NewBetService(store, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-Test-User"); user != "" {
			c.Locals("user_id", user)
		}
		return c.Next()
	})
	app.Post("/bet", svc.ListBets)
	app.Put("/bet", svc.CreateBet)
	app.Post("/bet/:bet_id/like", svc.LikeBet)
	app.Post("/bet/:bet_id/unlike", svc.UnlikeBet)
	app.Post("/bet/:bet_id/comments", svc.ListComments)
	app.Post("/bet/:bet_id/comment", svc.CreateComment)
	app.Post("/bet/:bet_id/join", svc.JoinBet)
	app.Post("/comment/:comment_id/like", svc.LikeComment)

	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID string, body interface{}) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("invalid response JSON (%d): %s", resp.StatusCode, raw)
	}
	return resp.StatusCode, envelope
}

func TestListBets_ReturnsSeedData(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "POST", "/bet", "", map[string]interface{}{"language": "en"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var bets []BetResponse
	if err := json.Unmarshal(envelope["data"], &bets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(bets) != 3 {
		t.Fatalf("got %d bets, want 3", len(bets))
	}

	// Newest first: the default sort is by createdAt descending.
	if bets[0].ID != "fixture-bet-1" {
		t.Errorf("first bet = %q, want fixture-bet-1", bets[0].ID)
	}
	if bets[0].LikesCount != 20 {
		t.Errorf("likesCount = %d, want 20", bets[0].LikesCount)
	}
	if bets[0].PotentialWinnings != 2500*1.8 {
		t.Errorf("potentialWinnings = %.2f, want %.2f", bets[0].PotentialWinnings, 2500*1.8)
	}
}

func TestListBets_SingleByID(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "POST", "/bet", "", map[string]interface{}{
		"language": "en",
		"id":       "fixture-bet-2",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var bets []BetResponse
	if err := json.Unmarshal(envelope["data"], &bets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(bets) != 1 || bets[0].ID != "fixture-bet-2" {
		t.Fatalf("single lookup returned %d rows", len(bets))
	}
	if bets[0].PotentialWinnings != 25000 {
		t.Errorf("potentialWinnings = %.2f, want 25000 (10000 × 2.5)", bets[0].PotentialWinnings)
	}
}

func TestListBets_UnknownIDIs404(t *testing.T) {
	app, _ := newBetTestApp()

	status, _ := doJSON(t, app, "POST", "/bet", "", map[string]interface{}{"id": "no-such-bet"})
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestListBets_RussianLocaleCategoryName(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "POST", "/bet", "", map[string]interface{}{
		"language": "ru",
		"id":       "fixture-bet-1",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var bets []BetResponse
	if err := json.Unmarshal(envelope["data"], &bets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if bets[0].Category.Name != "Спорт" {
		t.Errorf("category name = %q, want Спорт", bets[0].Category.Name)
	}
}

func TestLikeBet_CountGoesUpByOne(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "POST", "/bet/fixture-bet-1/like", "fixture-user-3", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var data struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.Liked || data.LikesCount != 21 {
		t.Errorf("like → liked=%v count=%d, want liked=true count=21", data.Liked, data.LikesCount)
	}

	// Liking again is idempotent — still one row per (bet, user).
	_, envelope = doJSON(t, app, "POST", "/bet/fixture-bet-1/like", "fixture-user-3", nil)
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.LikesCount != 21 {
		t.Errorf("repeat like count = %d, want 21", data.LikesCount)
	}
}

func TestUnlikeBet_CountGoesDownByOne(t *testing.T) {
	app, _ := newBetTestApp()

	// fixture-liker-5 is one of the 20 seeded likers.
	status, envelope := doJSON(t, app, "POST", "/bet/fixture-bet-1/unlike", "fixture-liker-5", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var data struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Liked || data.LikesCount != 19 {
		t.Errorf("unlike → liked=%v count=%d, want liked=false count=19", data.Liked, data.LikesCount)
	}
}

func TestJoinBet_RejectsBelowMinimum(t *testing.T) {
	app, _ := newBetTestApp()

	status, _ := doJSON(t, app, "POST", "/bet/fixture-bet-1/join", "fixture-user-2", map[string]interface{}{
		"amount":  5,
		"predict": true,
	})
	if status != http.StatusBadRequest {
		t.Errorf("below-minimum join status = %d, want 400", status)
	}
}

func TestJoinBet_RejectsAbovePool(t *testing.T) {
	app, _ := newBetTestApp()

	status, _ := doJSON(t, app, "POST", "/bet/fixture-bet-1/join", "fixture-user-2", map[string]interface{}{
		"amount":  99999,
		"predict": true,
	})
	if status != http.StatusBadRequest {
		t.Errorf("above-pool join status = %d, want 400", status)
	}
}

func TestJoinBet_GrowsPool(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "POST", "/bet/fixture-bet-1/join", "fixture-user-2", map[string]interface{}{
		"amount":  100,
		"predict": true,
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var bet BetResponse
	if err := json.Unmarshal(envelope["data"], &bet); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if bet.BetAmount != 2600 {
		t.Errorf("pool after join = %.0f, want 2600", bet.BetAmount)
	}
	if bet.BetsCount != 15 {
		t.Errorf("betsCount after join = %d, want 15", bet.BetsCount)
	}
}

func TestJoinBet_RejectsClosedBet(t *testing.T) {
	app, _ := newBetTestApp()

	status, _ := doJSON(t, app, "POST", "/bet/fixture-bet-3/join", "fixture-user-2", map[string]interface{}{
		"amount":  50,
		"predict": true,
	})
	if status != http.StatusBadRequest {
		t.Errorf("closed-bet join status = %d, want 400", status)
	}
}

func TestCreateBet_FieldValidation(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "PUT", "/bet", "fixture-user-1", map[string]interface{}{
		"language":    "en",
		"title":       "",
		"coefficient": 0.5,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}

	var fields map[string]string
	if err := json.Unmarshal(envelope["fields"], &fields); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	for _, key := range []string{"title", "category_id", "coefficient", "amount", "deadline"} {
		if fields[key] == "" {
			t.Errorf("missing validation message for %q", key)
		}
	}
}

func TestCreateComment_ThenListed(t *testing.T) {
	app, _ := newBetTestApp()

	status, _ := doJSON(t, app, "POST", "/bet/fixture-bet-2/comment", "fixture-user-1", map[string]interface{}{
		"content": "Taking the over here.",
	})
	if status != http.StatusOK {
		t.Fatalf("create comment status = %d, want 200", status)
	}

	status, envelope := doJSON(t, app, "POST", "/bet/fixture-bet-2/comments", "fixture-user-1", map[string]interface{}{})
	if status != http.StatusOK {
		t.Fatalf("list comments status = %d, want 200", status)
	}
	var comments []CommentResponse
	if err := json.Unmarshal(envelope["data"], &comments); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(comments) != 1 || comments[0].Content != "Taking the over here." {
		t.Fatalf("listed comments = %+v, want the created one", comments)
	}
	if comments[0].Author.Username != "alexwins" {
		t.Errorf("comment author = %q, want alexwins", comments[0].Author.Username)
	}
}

func TestLikeComment_SeededCount(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "POST", "/comment/fixture-comment-1/like", "fixture-user-3", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	var data struct {
		LikesCount int64 `json:"likes_count"`
	}
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.LikesCount != 2 {
		t.Errorf("comment likes = %d, want 2 (1 seeded + 1 new)", data.LikesCount)
	}
}

func TestListBets_FilterQueryParamsApply(t *testing.T) {
	app, _ := newBetTestApp()

	status, envelope := doJSON(t, app, "POST", "/bet?status=open&sortBy=coefficient", "", map[string]interface{}{"language": "en"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	var bets []BetResponse
	if err := json.Unmarshal(envelope["data"], &bets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(bets) != 2 {
		t.Fatalf("open bets = %d, want 2", len(bets))
	}
	if bets[0].Coefficient < bets[1].Coefficient {
		t.Errorf("coefficient sort order wrong: %.1f before %.1f", bets[0].Coefficient, bets[1].Coefficient)
	}
}
