// services/bet_fixtures.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"parier-bet-system/models"
)

// FixtureBetStore is the in-memory BetStore used in demo/fixture mode
// and as the read-path fallback data set. Everything lives behind one
// mutex; created bets get local "new-<timestamp>" ids and can be
// persisted to a JSON file (non-production placeholder).
type FixtureBetStore struct {
	mu sync.Mutex

	bets     []*models.Bet
	tags     map[string][]string          // bet id → tags
	authors  map[string]models.User       // external user id → author
	category map[string]models.Category   // category id → category
	likes    map[string]map[string]bool   // bet id → user id → liked
	comments map[string][]*CommentRow     // bet id → comments, newest first
	commentLikes map[string]map[string]bool // comment id → user id → liked
	joins    map[string]int64             // bet id → participation count

	// joins debit the same wallet the wallet endpoints serve
	wallet *FixtureWalletStore

	persistPath string
}

const fixtureDemoBalance = 10000.0

func NewFixtureBetStore() *FixtureBetStore {
	s := &FixtureBetStore{
		tags:         map[string][]string{},
		authors:      map[string]models.User{},
		category:     map[string]models.Category{},
		likes:        map[string]map[string]bool{},
		comments:     map[string][]*CommentRow{},
		commentLikes: map[string]map[string]bool{},
		joins:        map[string]int64{},
		wallet:       NewFixtureWalletStore(),
		persistPath:  os.Getenv("BETS_FIXTURE_FILE"),
	}
	s.seed()
	return s
}

func (s *FixtureBetStore) seed() {
	now := time.Now()

	for _, cat := range fixtureCategories {
		s.category[cat.ID] = cat
	}

	avatar := "/uploads/avatars/demo.png"
	s.authors["fixture-user-1"] = models.User{
		ID: "fixture-user-1", ExternalUserID: "fixture-user-1",
		Username: "alexwins", AvatarURL: &avatar,
		Rating: 4.7, WinRate: 68, Verified: true,
		JoinedDate: now.AddDate(-1, -2, 0),
	}
	s.authors["fixture-user-2"] = models.User{
		ID: "fixture-user-2", ExternalUserID: "fixture-user-2",
		Username: "mariapredicts",
		Rating: 4.2, WinRate: 55, Verified: false,
		JoinedDate: now.AddDate(0, -8, 0),
	}
	s.authors["fixture-user-3"] = models.User{
		ID: "fixture-user-3", ExternalUserID: "fixture-user-3",
		Username: "cryptonick",
		Rating: 3.9, WinRate: 49, Verified: true,
		JoinedDate: now.AddDate(0, -3, 0),
	}

	add := func(bet *models.Bet, tags []string, likers []string, joinCount int64) {
		s.bets = append(s.bets, bet)
		s.tags[bet.ID] = tags
		liked := map[string]bool{}
		for _, u := range likers {
			liked[u] = true
		}
		s.likes[bet.ID] = liked
		s.joins[bet.ID] = joinCount
	}

	// 20 baseline likers so the optimistic ±1 arithmetic is visible in
	// demo data (20 → 21 on like, 20 → 19 on unlike).
	likers1 := make([]string, 20)
	for i := range likers1 {
		likers1[i] = fmt.Sprintf("fixture-liker-%d", i+1)
	}
	likers2 := append(likers1[:18:18], "fixture-user-2", "fixture-user-3")

	eventDate := now.AddDate(0, 0, 12)
	add(&models.Bet{
		ID: "fixture-bet-1", AuthorID: "fixture-user-1",
		Title:            "City wins the derby",
		Slug:             "city-wins-the-derby",
		ShortDescription: "Local derby ends with a home victory",
		FullDescription:  "The home side has not lost a derby in three seasons.",
		Outcome:          "Home team wins in regular time",
		CategoryID:       "sports", TypeID: "public",
		Amount: 2500, Coefficient: 1.8,
		Status:   models.BetStatusOpen,
		Deadline: now.AddDate(0, 0, 10), EventDate: &eventDate,
		Location:           "Manchester",
		VerificationSource: "official-source",
		Timestamps:         models.Timestamps{CreatedAt: now.Add(-2 * time.Hour)},
	}, []string{"football", "derby"}, likers1, 14)

	add(&models.Bet{
		ID: "fixture-bet-2", AuthorID: "fixture-user-2",
		Title:            "BTC above 100k by March",
		Slug:             "btc-above-100k-by-march",
		ShortDescription: "Bitcoin closes a day above $100,000",
		FullDescription:  "One daily close above 100k before the deadline settles this.",
		Outcome:          "BTC daily close > $100,000",
		CategoryID:       "crypto", TypeID: "public",
		Amount: 10000, Coefficient: 2.5,
		Status:   models.BetStatusOpen,
		Deadline: now.AddDate(0, 1, 0),
		VerificationSource: "news-media",
		Timestamps:         models.Timestamps{CreatedAt: now.Add(-26 * time.Hour)},
	}, []string{"bitcoin", "price"}, likers2, 31)

	add(&models.Bet{
		ID: "fixture-bet-3", AuthorID: "fixture-user-3",
		Title:            "Snow in the capital on New Year",
		Slug:             "snow-in-the-capital-on-new-year",
		ShortDescription: "At least 1cm of snow on January 1st",
		FullDescription:  "Measured by the central weather station at noon.",
		Outcome:          "Official snow depth ≥ 1cm",
		CategoryID:       "weather", TypeID: "friends",
		Amount: 400, Coefficient: 3.2,
		Status:   models.BetStatusClosed,
		Deadline: now.AddDate(0, 0, -1),
		Location: "Moscow",
		Timestamps: models.Timestamps{CreatedAt: now.AddDate(0, 0, -20)},
	}, []string{"weather", "winter"}, []string{"fixture-user-1"}, 5)

	s.comments["fixture-bet-1"] = []*CommentRow{
		{
			Comment: models.BetComment{
				ID: "fixture-comment-1", BetID: "fixture-bet-1",
				AuthorID: "fixture-user-2",
				Content:  "Away side is missing two starters, easy call.",
				Timestamps: models.Timestamps{CreatedAt: now.Add(-90 * time.Minute)},
			},
			Author: s.authors["fixture-user-2"],
		},
	}
	s.commentLikes["fixture-comment-1"] = map[string]bool{"fixture-user-1": true}

	s.loadPersisted()
}

func (s *FixtureBetStore) row(bet *models.Bet, viewerID string) BetRow {
	liked := s.likes[bet.ID]
	comments := s.comments[bet.ID]
	return BetRow{
		Bet:           *bet,
		Author:        s.authors[bet.AuthorID],
		Category:      s.category[bet.CategoryID],
		Tags:          s.tags[bet.ID],
		CommentsCount: int64(len(comments)),
		BetsCount:     s.joins[bet.ID],
		LikesCount:    int64(len(liked)),
		LikedByMe:     viewerID != "" && liked[viewerID],
	}
}

func (s *FixtureBetStore) ListBets(categoryID, viewerID string, offset, limit int) ([]BetRow, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*models.Bet, 0, len(s.bets))
	for _, b := range s.bets {
		if categoryID != "" && b.CategoryID != categoryID {
			continue
		}
		matched = append(matched, b)
	}
	total := int64(len(matched))

	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	rows := make([]BetRow, 0, end-offset)
	for _, b := range matched[offset:end] {
		rows = append(rows, s.row(b, viewerID))
	}
	return rows, total, nil
}

func (s *FixtureBetStore) GetBet(id, viewerID string) (*BetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.find(id)
	if b == nil {
		return nil, ErrNotFound
	}
	row := s.row(b, viewerID)
	return &row, nil
}

func (s *FixtureBetStore) find(id string) *models.Bet {
	for _, b := range s.bets {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (s *FixtureBetStore) CreateBet(bet *models.Bet, tags []string, sourceIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// local id, same placeholder scheme the mock store used
	bet.ID = fmt.Sprintf("new-%d", time.Now().UnixMilli())
	if bet.CreatedAt.IsZero() {
		bet.CreatedAt = time.Now()
	}
	s.bets = append([]*models.Bet{bet}, s.bets...)
	s.tags[bet.ID] = tags
	s.likes[bet.ID] = map[string]bool{}

	s.persist()
	return nil
}

func (s *FixtureBetStore) ToggleLike(betID, userID string, like bool) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(betID) == nil {
		return false, 0, ErrNotFound
	}
	liked := s.likes[betID]
	if liked == nil {
		liked = map[string]bool{}
		s.likes[betID] = liked
	}
	if like {
		liked[userID] = true
	} else {
		delete(liked, userID)
	}
	return like, int64(len(liked)), nil
}

func (s *FixtureBetStore) ListComments(betID, viewerID string, offset, limit int) ([]CommentRow, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(betID) == nil {
		return nil, 0, ErrNotFound
	}
	all := s.comments[betID]
	total := int64(len(all))

	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	rows := make([]CommentRow, 0, end-offset)
	for _, cr := range all[offset:end] {
		liked := s.commentLikes[cr.Comment.ID]
		rows = append(rows, CommentRow{
			Comment:    cr.Comment,
			Author:     cr.Author,
			LikesCount: int64(len(liked)),
			LikedByMe:  viewerID != "" && liked[viewerID],
		})
	}
	return rows, total, nil
}

func (s *FixtureBetStore) CreateComment(comment *models.BetComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(comment.BetID) == nil {
		return ErrNotFound
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	row := &CommentRow{
		Comment: *comment,
		Author:  s.authors[comment.AuthorID],
	}
	s.comments[comment.BetID] = append([]*CommentRow{row}, s.comments[comment.BetID]...)
	return nil
}

func (s *FixtureBetStore) ToggleCommentLike(commentID, userID string, like bool) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, rows := range s.comments {
		for _, cr := range rows {
			if cr.Comment.ID == commentID {
				found = true
			}
		}
	}
	if !found {
		return false, 0, ErrNotFound
	}

	liked := s.commentLikes[commentID]
	if liked == nil {
		liked = map[string]bool{}
		s.commentLikes[commentID] = liked
	}
	if like {
		liked[userID] = true
	} else {
		delete(liked, userID)
	}
	return like, int64(len(liked)), nil
}

func (s *FixtureBetStore) PlaceBet(betID, userID string, amount float64, predict bool) (*BetRow, error) {
	s.mu.Lock()

	bet := s.find(betID)
	if bet == nil {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if bet.Status != models.BetStatusOpen {
		s.mu.Unlock()
		return nil, validationError("Bet is not open for participation")
	}
	if amount < models.MinBetAmount {
		s.mu.Unlock()
		return nil, validationError(fmt.Sprintf("Minimum bet is %.0f tokens", models.MinBetAmount))
	}
	if amount > bet.Amount {
		s.mu.Unlock()
		return nil, validationError(fmt.Sprintf("Maximum bet is the current pool (%.0f tokens)", bet.Amount))
	}

	if err := s.wallet.debitForBet(userID, amount, bet.ID, "Bet placed: "+bet.Title); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	bet.Amount += amount
	s.joins[betID]++

	s.mu.Unlock()
	return s.GetBet(betID, userID)
}

// WalletStore exposes the wallet the demo joins debit, so the wallet
// endpoints run against the same balances and ledger.
func (s *FixtureBetStore) WalletStore() *FixtureWalletStore {
	return s.wallet
}

// CreditCandidates exposes the demo authors for the admin credit
// endpoints in fixture mode.
func (s *FixtureBetStore) CreditCandidates() []CreditCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CreditCandidate, 0, len(s.authors))
	for _, author := range s.authors {
		b := s.wallet.balanceOf(author.ExternalUserID)
		out = append(out, CreditCandidate{
			UserID:     author.ExternalUserID,
			Username:   author.Username,
			JoinedAt:   author.JoinedDate,
			Balance:    &b,
			BetsPlaced: 1, // every demo author has an open bet
		})
	}
	return out
}

// persist / loadPersisted back created bets with a local JSON file when
// BETS_FIXTURE_FILE is set. This is the demo placeholder, not storage.

type persistedBet struct {
	Bet  models.Bet `json:"bet"`
	Tags []string   `json:"tags"`
}

func (s *FixtureBetStore) persist() {
	if s.persistPath == "" {
		return
	}
	var out []persistedBet
	for _, b := range s.bets {
		if len(b.ID) > 4 && b.ID[:4] == "new-" {
			out = append(out, persistedBet{Bet: *b, Tags: s.tags[b.ID]})
		}
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(s.persistPath, raw, 0644); err != nil {
		log.Printf("⚠️ [FIXTURE] failed to persist bets to %s: %v", s.persistPath, err)
	}
}

func (s *FixtureBetStore) loadPersisted() {
	if s.persistPath == "" {
		return
	}
	raw, err := os.ReadFile(s.persistPath)
	if err != nil {
		return
	}
	var in []persistedBet
	if err := json.Unmarshal(raw, &in); err != nil {
		log.Printf("⚠️ [FIXTURE] invalid bets file %s: %v", s.persistPath, err)
		return
	}
	for i := range in {
		b := in[i].Bet
		s.bets = append([]*models.Bet{&b}, s.bets...)
		s.tags[b.ID] = in[i].Tags
		s.likes[b.ID] = map[string]bool{}
	}
}
