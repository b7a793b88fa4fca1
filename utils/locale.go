// utils/locale.go
package utils

import (
	"golang.org/x/text/language"
)

const DefaultLocale = "en"

var supportedLocales = []language.Tag{
	language.English, // en — default
	language.Russian, // ru
}

var localeMatcher = language.NewMatcher(supportedLocales)

// ResolveLocale picks the serving locale from an explicit language value
// (request body), falling back to the Accept-Language header, then "en".
func ResolveLocale(explicit, acceptLanguage string) string {
	switch explicit {
	case "en", "ru":
		return explicit
	}

	tag, _ := language.MatchStrings(localeMatcher, explicit, acceptLanguage)
	base, _ := tag.Base()
	if base.String() == "ru" {
		return "ru"
	}
	return DefaultLocale
}
