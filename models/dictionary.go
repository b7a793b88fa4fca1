// models/dictionary.go
package models

// Dictionary rows back the selector lists (categories, verification
// sources, bet statuses, bet types). Static per locale; loaded once by
// the front end. Two locales are shipped, so names are stored flat
// instead of through a localization join table.

type Category struct {
	ID     string `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"not null"` // en
	NameRU string `json:"name_ru"`
	Color  string `json:"color"` // tailwind-ish color tag used by the UI

	Timestamps
}

type VerificationSource struct {
	ID     string `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"not null"`
	NameRU string `json:"name_ru"`

	Timestamps
}

type BetStatusEntry struct {
	ID     string `json:"id" gorm:"primaryKey"` // matches Bet.Status values
	Name   string `json:"name" gorm:"not null"`
	NameRU string `json:"name_ru"`

	Timestamps
}

func (BetStatusEntry) TableName() string {
	return "bet_statuses"
}

type BetType struct {
	ID     string `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"not null"`
	NameRU string `json:"name_ru"`

	Timestamps
}

// LocalizedName picks the name for a locale, falling back to English.
func localizedName(locale, en, ru string) string {
	if locale == "ru" && ru != "" {
		return ru
	}
	return en
}

func (c Category) LocalizedName(locale string) string           { return localizedName(locale, c.Name, c.NameRU) }
func (v VerificationSource) LocalizedName(locale string) string { return localizedName(locale, v.Name, v.NameRU) }
func (s BetStatusEntry) LocalizedName(locale string) string     { return localizedName(locale, s.Name, s.NameRU) }
func (t BetType) LocalizedName(locale string) string            { return localizedName(locale, t.Name, t.NameRU) }
