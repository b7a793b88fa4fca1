// services/dictionary_service.go
package services

import (
	"context"
	"log"
	"time"

	"parier-bet-system/models"
	"parier-bet-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DictionaryStore is the data seam for the lookup lists. Same policy as
// bets: a gorm implementation and a fixture implementation, chosen by
// configuration.
type DictionaryStore interface {
	Categories() ([]models.Category, error)
	VerificationSources() ([]models.VerificationSource, error)
	BetStatuses() ([]models.BetStatusEntry, error)
	BetTypes() ([]models.BetType, error)
}

type GormDictionaryStore struct {
	DB *gorm.DB
}

func NewGormDictionaryStore(db *gorm.DB) *GormDictionaryStore {
	return &GormDictionaryStore{DB: db}
}

func (s *GormDictionaryStore) Categories() ([]models.Category, error) {
	var out []models.Category
	err := s.DB.Order("name ASC").Find(&out).Error
	return out, err
}

func (s *GormDictionaryStore) VerificationSources() ([]models.VerificationSource, error) {
	var out []models.VerificationSource
	err := s.DB.Order("name ASC").Find(&out).Error
	return out, err
}

func (s *GormDictionaryStore) BetStatuses() ([]models.BetStatusEntry, error) {
	var out []models.BetStatusEntry
	err := s.DB.Find(&out).Error
	return out, err
}

func (s *GormDictionaryStore) BetTypes() ([]models.BetType, error) {
	var out []models.BetType
	err := s.DB.Find(&out).Error
	return out, err
}

// DictionaryService answers the selector-list endpoints. A store
// failure never reaches the client: the response degrades to the
// fixture set for the requested locale (read-path failure semantics).
type DictionaryService struct {
	Store    DictionaryStore
	Fallback *FixtureDictionaryStore
	Cache    *redis.Client // nil = disabled
}

const dictionaryCacheTTL = 5 * time.Minute

func NewDictionaryService(store DictionaryStore, cache *redis.Client) *DictionaryService {
	return &DictionaryService{
		Store:    store,
		Fallback: NewFixtureDictionaryStore(),
		Cache:    cache,
	}
}

// DictionaryItem is the wire shape of one selector entry.
type DictionaryItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DictionaryRequest struct {
	Language string `json:"language"`
}

func (s *DictionaryService) locale(c *fiber.Ctx) string {
	var req DictionaryRequest
	_ = c.BodyParser(&req) // empty body → header/default locale
	return utils.ResolveLocale(req.Language, c.Get("Accept-Language"))
}

func (s *DictionaryService) GetCategories(c *fiber.Ctx) error {
	locale := s.locale(c)
	items := s.cached(c.Context(), "categories", locale, func(store DictionaryStore) ([]DictionaryItem, error) {
		cats, err := store.Categories()
		if err != nil {
			return nil, err
		}
		out := make([]DictionaryItem, len(cats))
		for i, cat := range cats {
			out[i] = DictionaryItem{ID: cat.ID, Name: cat.LocalizedName(locale), Color: cat.Color}
		}
		return out, nil
	})
	return sendSuccess(c, "Categories fetched successfully", items)
}

func (s *DictionaryService) GetVerificationSources(c *fiber.Ctx) error {
	locale := s.locale(c)
	items := s.cached(c.Context(), "verification-sources", locale, func(store DictionaryStore) ([]DictionaryItem, error) {
		sources, err := store.VerificationSources()
		if err != nil {
			return nil, err
		}
		out := make([]DictionaryItem, len(sources))
		for i, src := range sources {
			out[i] = DictionaryItem{ID: src.ID, Name: src.LocalizedName(locale)}
		}
		return out, nil
	})
	return sendSuccess(c, "Verification sources fetched successfully", items)
}

func (s *DictionaryService) GetBetStatuses(c *fiber.Ctx) error {
	locale := s.locale(c)
	items := s.cached(c.Context(), "bet-statuses", locale, func(store DictionaryStore) ([]DictionaryItem, error) {
		statuses, err := store.BetStatuses()
		if err != nil {
			return nil, err
		}
		out := make([]DictionaryItem, len(statuses))
		for i, st := range statuses {
			out[i] = DictionaryItem{ID: st.ID, Name: st.LocalizedName(locale)}
		}
		return out, nil
	})
	return sendSuccess(c, "Bet statuses fetched successfully", items)
}

func (s *DictionaryService) GetBetTypes(c *fiber.Ctx) error {
	locale := s.locale(c)
	items := s.cached(c.Context(), "bet-types", locale, func(store DictionaryStore) ([]DictionaryItem, error) {
		types, err := store.BetTypes()
		if err != nil {
			return nil, err
		}
		out := make([]DictionaryItem, len(types))
		for i, bt := range types {
			out[i] = DictionaryItem{ID: bt.ID, Name: bt.LocalizedName(locale)}
		}
		return out, nil
	})
	return sendSuccess(c, "Bet types fetched successfully", items)
}

// cached runs load against the cache, then the live store, then the
// fixture fallback. One attempt each — no retries.
func (s *DictionaryService) cached(ctx context.Context, name, locale string, load func(DictionaryStore) ([]DictionaryItem, error)) []DictionaryItem {
	key := "dict:" + name + ":" + locale

	var items []DictionaryItem
	if utils.CacheGetJSON(ctx, s.Cache, key, &items) {
		return items
	}

	items, err := load(s.Store)
	if err != nil {
		log.Printf("⚠️ [DICT] %s lookup failed, serving fixtures: %v", name, err)
		items, _ = load(s.Fallback) // fixture store cannot fail
		return items
	}

	utils.CacheSetJSON(ctx, s.Cache, key, items, dictionaryCacheTTL)
	return items
}
