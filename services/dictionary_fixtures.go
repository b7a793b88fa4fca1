// services/dictionary_fixtures.go
package services

import (
	"parier-bet-system/models"
)

// Fixed mock dictionaries — the fallback set that keeps selectors
// populated when the DB is unreachable, and the whole data set in
// fixture mode.

var fixtureCategories = []models.Category{
	{ID: "sports", Name: "Sports", NameRU: "Спорт", Color: "emerald"},
	{ID: "politics", Name: "Politics", NameRU: "Политика", Color: "blue"},
	{ID: "crypto", Name: "Crypto", NameRU: "Крипта", Color: "amber"},
	{ID: "weather", Name: "Weather", NameRU: "Погода", Color: "sky"},
	{ID: "entertainment", Name: "Entertainment", NameRU: "Развлечения", Color: "pink"},
}

var fixtureVerificationSources = []models.VerificationSource{
	{ID: "official-source", Name: "Official source", NameRU: "Официальный источник"},
	{ID: "news-media", Name: "News media", NameRU: "СМИ"},
	{ID: "community-vote", Name: "Community vote", NameRU: "Голосование сообщества"},
}

var fixtureBetStatuses = []models.BetStatusEntry{
	{ID: models.BetStatusOpen, Name: "Open", NameRU: "Открыта"},
	{ID: models.BetStatusClosed, Name: "Closed", NameRU: "Закрыта"},
	{ID: models.BetStatusCompleted, Name: "Completed", NameRU: "Завершена"},
	{ID: models.BetStatusCancelled, Name: "Cancelled", NameRU: "Отменена"},
}

var fixtureBetTypes = []models.BetType{
	{ID: "public", Name: "Public", NameRU: "Публичная"},
	{ID: "friends", Name: "Friends only", NameRU: "Только друзья"},
	{ID: "private", Name: "Private", NameRU: "Приватная"},
}

// FixtureDictionaryStore serves the fixed sets above.
type FixtureDictionaryStore struct{}

func NewFixtureDictionaryStore() *FixtureDictionaryStore {
	return &FixtureDictionaryStore{}
}

func (s *FixtureDictionaryStore) Categories() ([]models.Category, error) {
	return fixtureCategories, nil
}

func (s *FixtureDictionaryStore) VerificationSources() ([]models.VerificationSource, error) {
	return fixtureVerificationSources, nil
}

func (s *FixtureDictionaryStore) BetStatuses() ([]models.BetStatusEntry, error) {
	return fixtureBetStatuses, nil
}

func (s *FixtureDictionaryStore) BetTypes() ([]models.BetType, error) {
	return fixtureBetTypes, nil
}
