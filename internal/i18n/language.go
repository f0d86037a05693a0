// Package i18n holds the two display languages of the storefront and the
// user-facing strings emitted for cart state.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Language selects one of the parallel message sets.
type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
)

var supported = []language.Tag{language.Arabic, language.English}

var matcher = language.NewMatcher(supported)

// Parse maps a language tag such as "en-US" or "ar" onto a supported
// Language. Unknown or empty input yields fallback.
func Parse(value string, fallback Language) Language {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	tag, err := language.Parse(value)
	if err != nil {
		return fallback
	}
	return match([]language.Tag{tag}, fallback)
}

// FromAcceptLanguage negotiates a Language from an Accept-Language header.
func FromAcceptLanguage(header string, fallback Language) Language {
	if strings.TrimSpace(header) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	return match(tags, fallback)
}

func match(tags []language.Tag, fallback Language) Language {
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	switch supported[index] {
	case language.English:
		return English
	default:
		return Arabic
	}
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == Arabic || l == English
}

// Or returns l when valid, otherwise fallback.
func (l Language) Or(fallback Language) Language {
	if l.Valid() {
		return l
	}
	return fallback
}

// FromRequest picks the display language from the lang query parameter, the
// X-Cart-Lang header or Accept-Language, in that order.
func FromRequest(r *http.Request, fallback Language) Language {
	if r == nil {
		return fallback
	}
	if v := r.URL.Query().Get("lang"); v != "" {
		return Parse(v, fallback)
	}
	if v := r.Header.Get("X-Cart-Lang"); v != "" {
		return Parse(v, fallback)
	}
	return FromAcceptLanguage(r.Header.Get("Accept-Language"), fallback)
}
