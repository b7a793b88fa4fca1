package services

import (
	"net/url"
	"testing"
	"time"

	"parier-bet-system/models"
)

func filterRow(id, category, status, location, title string, coefficient, pool float64, createdAt time.Time, likes, joins int64) BetRow {
	return BetRow{
		Bet: models.Bet{
			ID:          id,
			Title:       title,
			CategoryID:  category,
			Status:      status,
			Location:    location,
			Coefficient: coefficient,
			Amount:      pool,
			Timestamps:  models.Timestamps{CreatedAt: createdAt},
		},
		LikesCount: likes,
		BetsCount:  joins,
	}
}

func TestFilterState_DateRangeAllAcceptsEverything(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	rows := []BetRow{
		filterRow("a", "sports", "open", "", "today", 1.5, 100, now, 0, 0),
		filterRow("b", "sports", "open", "", "last year", 1.5, 100, now.AddDate(-1, 0, 0), 0, 0),
		filterRow("c", "sports", "open", "", "zero time", 1.5, 100, time.Time{}, 0, 0),
	}

	fs := ParseFilterState(url.Values{})
	if fs.DateRange != DateRangeAll {
		t.Fatalf("default dateRange = %q, want %q", fs.DateRange, DateRangeAll)
	}

	got := fs.Apply(rows, now)
	if len(got) != len(rows) {
		t.Errorf("dateRange=all kept %d of %d rows", len(got), len(rows))
	}
}

func TestFilterState_DateRangeToday(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	rows := []BetRow{
		filterRow("a", "", "open", "", "this morning", 1.5, 100, now.Add(-20*time.Hour), 0, 0),
		filterRow("b", "", "open", "", "yesterday", 1.5, 100, now.Add(-24*time.Hour), 0, 0),
	}

	fs := FilterState{DateRange: DateRangeToday, SortBy: SortByDate}
	got := fs.Apply(rows, now)

	if len(got) != 1 || got[0].Bet.ID != "a" {
		t.Fatalf("dateRange=today returned %v, want only row a", rowIDs(got))
	}
}

func TestFilterState_SortByCoefficientNonIncreasing(t *testing.T) {
	now := time.Now()
	rows := []BetRow{
		filterRow("a", "", "open", "", "low", 1.2, 100, now, 0, 0),
		filterRow("b", "", "open", "", "high", 4.0, 100, now, 0, 0),
		filterRow("c", "", "open", "", "mid", 2.5, 100, now, 0, 0),
	}

	fs := FilterState{DateRange: DateRangeAll, SortBy: SortByCoefficient}
	got := fs.Apply(rows, now)

	for i := 1; i < len(got); i++ {
		if got[i-1].Bet.Coefficient < got[i].Bet.Coefficient {
			t.Fatalf("coefficient sort not non-increasing: %v", rowIDs(got))
		}
	}
	if got[0].Bet.ID != "b" {
		t.Errorf("highest coefficient first = %q, want b", got[0].Bet.ID)
	}
}

func TestFilterState_SortByPopularityUsesLikesPlusJoins(t *testing.T) {
	now := time.Now()
	rows := []BetRow{
		filterRow("a", "", "open", "", "quiet", 1.5, 100, now, 2, 1),
		filterRow("b", "", "open", "", "loud", 1.5, 100, now, 10, 20),
	}

	fs := FilterState{DateRange: DateRangeAll, SortBy: SortByPopularity}
	got := fs.Apply(rows, now)

	if got[0].Bet.ID != "b" {
		t.Errorf("popularity sort first = %q, want b", got[0].Bet.ID)
	}
}

func TestFilterState_ConjunctivePredicates(t *testing.T) {
	now := time.Now()
	rows := []BetRow{
		filterRow("a", "sports", "open", "Manchester", "derby night", 1.8, 2500, now, 0, 0),
		filterRow("b", "sports", "closed", "Manchester", "derby replay", 1.8, 2500, now, 0, 0),
		filterRow("c", "crypto", "open", "", "btc run", 2.5, 10000, now, 0, 0),
	}

	minCoef := 1.5
	fs := FilterState{
		Category:       "sports",
		Status:         "open",
		MinCoefficient: &minCoef,
		Location:       "manch",
		DateRange:      DateRangeAll,
		SortBy:         SortByDate,
	}
	got := fs.Apply(rows, now)

	if len(got) != 1 || got[0].Bet.ID != "a" {
		t.Fatalf("conjunctive filter returned %v, want only row a", rowIDs(got))
	}
}

func TestFilterState_QueryMatchesTags(t *testing.T) {
	now := time.Now()
	row := filterRow("a", "sports", "open", "", "City wins the derby", 1.8, 2500, now, 0, 0)
	row.Tags = []string{"football", "derby"}

	fs := FilterState{Query: "FOOTB", DateRange: DateRangeAll, SortBy: SortByDate}
	got := fs.Apply([]BetRow{row}, now)

	if len(got) != 1 {
		t.Errorf("tag query matched %d rows, want 1", len(got))
	}
}

func TestFilterState_RoundTrip(t *testing.T) {
	values := url.Values{}
	values.Set("category", "crypto")
	values.Set("q", "btc")
	values.Set("status", "open")
	values.Set("minCoefficient", "1.5")
	values.Set("maxPool", "10000")
	values.Set("dateRange", "week")
	values.Set("location", "Moscow")
	values.Set("sortBy", "pool")

	fs := ParseFilterState(values)
	encoded := fs.Encode()

	if encoded.Encode() != values.Encode() {
		t.Errorf("round trip mismatch:\n got  %s\n want %s", encoded.Encode(), values.Encode())
	}
}

func TestFilterState_EncodeOmitsDefaults(t *testing.T) {
	fs := ParseFilterState(url.Values{})
	encoded := fs.Encode()

	// Defaults (dateRange=all) and the sortBy default are not "all" but
	// sortBy=date still encodes — only "all" and empties are dropped.
	if encoded.Get("dateRange") != "" {
		t.Errorf("dateRange=all should be omitted, got %q", encoded.Get("dateRange"))
	}
	if encoded.Get("category") != "" {
		t.Errorf("empty category should be omitted")
	}
}

func TestBet_PotentialWinnings(t *testing.T) {
	bet := models.Bet{Amount: 1000, Coefficient: 2.5}
	if got := bet.PotentialWinnings(); got != 2500 {
		t.Errorf("PotentialWinnings() = %.2f, want 2500.00", got)
	}
}

func rowIDs(rows []BetRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Bet.ID
	}
	return ids
}
