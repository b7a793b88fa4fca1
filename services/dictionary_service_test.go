package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"parier-bet-system/models"

	"github.com/gofiber/fiber/v2"
)

// failingDictionaryStore simulates a dead database.
type failingDictionaryStore struct{}

func (failingDictionaryStore) Categories() ([]models.Category, error) {
	return nil, errors.New("connection refused")
}
func (failingDictionaryStore) VerificationSources() ([]models.VerificationSource, error) {
	return nil, errors.New("connection refused")
}
func (failingDictionaryStore) BetStatuses() ([]models.BetStatusEntry, error) {
	return nil, errors.New("connection refused")
}
func (failingDictionaryStore) BetTypes() ([]models.BetType, error) {
	return nil, errors.New("connection refused")
}

func newDictTestApp(store DictionaryStore) *fiber.App {
	svc := NewDictionaryService(store, nil)
	app := fiber.New()
	app.Post("/categories", svc.GetCategories)
	app.Post("/verification-sources", svc.GetVerificationSources)
	app.Post("/bet-statuses", svc.GetBetStatuses)
	app.Post("/bet-types", svc.GetBetTypes)
	return app
}

func fetchDictionary(t *testing.T, app *fiber.App, path string, body interface{}) []DictionaryItem {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest("POST", path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s status = %d, want 200", path, resp.StatusCode)
	}
	var envelope struct {
		Data []DictionaryItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return envelope.Data
}

func TestDictionaries_FixtureSets(t *testing.T) {
	app := newDictTestApp(NewFixtureDictionaryStore())

	categories := fetchDictionary(t, app, "/categories", map[string]string{"language": "en"})
	if len(categories) != len(fixtureCategories) {
		t.Errorf("categories = %d, want %d", len(categories), len(fixtureCategories))
	}
	found := false
	for _, item := range categories {
		if item.ID == "sports" && item.Name == "Sports" && item.Color == "emerald" {
			found = true
		}
	}
	if !found {
		t.Errorf("sports category missing from %v", categories)
	}

	statuses := fetchDictionary(t, app, "/bet-statuses", nil)
	if len(statuses) != 4 {
		t.Errorf("bet statuses = %d, want 4", len(statuses))
	}
}

func TestDictionaries_RussianNames(t *testing.T) {
	app := newDictTestApp(NewFixtureDictionaryStore())

	categories := fetchDictionary(t, app, "/categories", map[string]string{"language": "ru"})
	for _, item := range categories {
		if item.ID == "sports" && item.Name != "Спорт" {
			t.Errorf("sports ru name = %q, want Спорт", item.Name)
		}
	}

	sources := fetchDictionary(t, app, "/verification-sources", map[string]string{"language": "ru"})
	for _, item := range sources {
		if item.ID == "official-source" && item.Name != "Официальный источник" {
			t.Errorf("official-source ru name = %q", item.Name)
		}
	}
}

func TestDictionaries_StoreFailureServesFixtures(t *testing.T) {
	// A dead DB must never surface as an error — the selectors degrade
	// to the fixture lists.
	app := newDictTestApp(failingDictionaryStore{})

	types := fetchDictionary(t, app, "/bet-types", map[string]string{"language": "en"})
	if len(types) != len(fixtureBetTypes) {
		t.Fatalf("fallback bet types = %d, want %d", len(types), len(fixtureBetTypes))
	}
	if types[0].ID != "public" {
		t.Errorf("first bet type = %q, want public", types[0].ID)
	}
}
