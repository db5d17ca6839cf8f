package translate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinWordLen is the shortest normalized word that gets translated
const MinWordLen = 2

// Normalize lowercases word, strips punctuation and symbols and trims spaces
func Normalize(word string) string {
	res := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, word)
	return strings.TrimSpace(res)
}

// Applicable reports whether the normalized word may be cached or looked up
func Applicable(normalized string) bool {
	return utf8.RuneCountInString(normalized) >= MinWordLen
}

var englishCodes = map[string]bool{"": true, "en": true, "english": true}

// IsEnglish reports whether the language needs no translation
func IsEnglish(lang string) bool {
	return englishCodes[strings.ToLower(strings.TrimSpace(lang))]
}

var languageMap = map[string]string{
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"chinese":    "zh",
	"russian":    "ru",
	"lithuanian": "lt",
	"polish":     "pl",
	"dutch":      "nl",
	"korean":     "ko",
	"ukrainian":  "uk",
}

// LangCode maps a language name or code to the code the providers accept
func LangCode(lang string) string {
	lower := strings.ToLower(strings.TrimSpace(lang))
	if code, ok := languageMap[lower]; ok {
		return code
	}
	return lower
}
