// services/feed_filter.go
package services

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DateRangeAll   = "all"
	DateRangeToday = "today"
	DateRangeWeek  = "week"
	DateRangeMonth = "month"

	SortByDate        = "date"
	SortByPopularity  = "popularity"
	SortByCoefficient = "coefficient"
	SortByPool        = "pool"
)

// FilterState is the transient feed view state. It is derived entirely
// from query parameters and encodes back to them, so back/forward
// navigation and shareable links reproduce the same view — nothing here
// is ever persisted.
type FilterState struct {
	Category       string
	Query          string
	Status         string
	MinCoefficient *float64
	MaxCoefficient *float64
	MinPool        *float64
	MaxPool        *float64
	DateRange      string // today | week | month | all
	Location       string
	SortBy         string // date | popularity | coefficient | pool
}

// ParseFilterState reads a FilterState from query parameters, applying
// the defaults the UI assumes (dateRange=all, sortBy=date).
func ParseFilterState(values url.Values) FilterState {
	fs := FilterState{
		Category:  values.Get("category"),
		Query:     values.Get("q"),
		Status:    values.Get("status"),
		Location:  values.Get("location"),
		DateRange: values.Get("dateRange"),
		SortBy:    values.Get("sortBy"),
	}
	if fs.DateRange == "" {
		fs.DateRange = DateRangeAll
	}
	if fs.SortBy == "" {
		fs.SortBy = SortByDate
	}

	fs.MinCoefficient = parseFloatParam(values.Get("minCoefficient"))
	fs.MaxCoefficient = parseFloatParam(values.Get("maxCoefficient"))
	fs.MinPool = parseFloatParam(values.Get("minPool"))
	fs.MaxPool = parseFloatParam(values.Get("maxPool"))

	return fs
}

func parseFloatParam(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Encode writes the state back to query parameters. Zero values are
// omitted: empty strings, nil numbers, and the "all" sentinel — the
// same setOrDelete rule the filter panel applies to the URL.
func (fs FilterState) Encode() url.Values {
	values := url.Values{}
	setOrDelete := func(key, val string) {
		if val != "" && val != DateRangeAll {
			values.Set(key, val)
		}
	}
	setFloat := func(key string, val *float64) {
		if val != nil {
			values.Set(key, strconv.FormatFloat(*val, 'f', -1, 64))
		}
	}

	setOrDelete("category", fs.Category)
	setOrDelete("q", fs.Query)
	setOrDelete("status", fs.Status)
	setFloat("minCoefficient", fs.MinCoefficient)
	setFloat("maxCoefficient", fs.MaxCoefficient)
	setFloat("minPool", fs.MinPool)
	setFloat("maxPool", fs.MaxPool)
	setOrDelete("dateRange", fs.DateRange)
	setOrDelete("location", fs.Location)
	setOrDelete("sortBy", fs.SortBy)

	return values
}

// Apply runs the conjunctive predicate chain and then exactly one sort
// comparator over the rows. The sort is stable: ties keep the order the
// store produced.
func (fs FilterState) Apply(rows []BetRow, now time.Time) []BetRow {
	result := make([]BetRow, 0, len(rows))

	for _, row := range rows {
		if fs.Category != "" && row.Bet.CategoryID != fs.Category {
			continue
		}
		if !fs.matchesQuery(row) {
			continue
		}
		if fs.Status != "" && row.Bet.Status != fs.Status {
			continue
		}
		if fs.MinCoefficient != nil && row.Bet.Coefficient < *fs.MinCoefficient {
			continue
		}
		if fs.MaxCoefficient != nil && row.Bet.Coefficient > *fs.MaxCoefficient {
			continue
		}
		if fs.MinPool != nil && row.Bet.Amount < *fs.MinPool {
			continue
		}
		if fs.MaxPool != nil && row.Bet.Amount > *fs.MaxPool {
			continue
		}
		if loc := strings.TrimSpace(fs.Location); loc != "" {
			if !strings.Contains(strings.ToLower(row.Bet.Location), strings.ToLower(loc)) {
				continue
			}
		}
		if !inDateRange(fs.DateRange, row.Bet.CreatedAt, now) {
			continue
		}
		result = append(result, row)
	}

	fs.sortRows(result)
	return result
}

func (fs FilterState) matchesQuery(row BetRow) bool {
	query := strings.ToLower(strings.TrimSpace(fs.Query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(row.Bet.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(row.Bet.ShortDescription), query) {
		return true
	}
	for _, tag := range row.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// inDateRange — "all" accepts everything regardless of createdAt.
func inDateRange(dateRange string, createdAt, now time.Time) bool {
	switch dateRange {
	case DateRangeToday:
		y1, m1, d1 := createdAt.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case DateRangeWeek:
		y1, w1 := createdAt.ISOWeek()
		y2, w2 := now.ISOWeek()
		return y1 == y2 && w1 == w2
	case DateRangeMonth:
		y1, m1, _ := createdAt.Date()
		y2, m2, _ := now.Date()
		return y1 == y2 && m1 == m2
	default:
		return true
	}
}

func (fs FilterState) sortRows(rows []BetRow) {
	switch fs.SortBy {
	case SortByPopularity:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].BetsCount+rows[i].LikesCount > rows[j].BetsCount+rows[j].LikesCount
		})
	case SortByCoefficient:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Bet.Coefficient > rows[j].Bet.Coefficient
		})
	case SortByPool:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Bet.Amount > rows[j].Bet.Amount
		})
	case SortByDate:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Bet.CreatedAt.After(rows[j].Bet.CreatedAt)
		})
	}
}
