// Package lang classifies short text blobs as English or Japanese.
//
// The classifier is deliberately coarse: it knows only these two
// languages, has no confidence score, and misclassifies short
// mixed-script text. The rule order is part of the contract because the
// response pipeline branches on exact equality with a user's target
// language.
package lang

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type Language string

const (
	English  Language = "en"
	Japanese Language = "ja"
	Unknown  Language = "unknown"
)

// LongTextThreshold is the rune length above which Japanese-free text
// that fails the ASCII pattern is still treated as English. Mixed
// punctuation and diacritics fall through the ASCII rule; long text
// without a single Japanese code point is overwhelmingly English in
// practice.
const LongTextThreshold = 50

var asciiEnglishPattern = regexp.MustCompile(`^[A-Za-z0-9\s.,!?'";:()\-]+$`)

// Classify applies, in order: any Japanese-block rune wins; then a pure
// ASCII letter/punctuation match; then the long-text fallback.
func Classify(text string) Language {
	if containsJapanese(text) {
		return Japanese
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Unknown
	}
	if asciiEnglishPattern.MatchString(trimmed) {
		return English
	}
	if utf8.RuneCountInString(trimmed) > LongTextThreshold {
		return English
	}
	return Unknown
}

func containsJapanese(text string) bool {
	for _, r := range text {
		switch {
		case r >= 0x3040 && r <= 0x309F: // Hiragana
			return true
		case r >= 0x30A0 && r <= 0x30FF: // Katakana
			return true
		case r >= 0x31F0 && r <= 0x31FF: // Katakana phonetic extensions
			return true
		case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
			return true
		}
	}
	return false
}

// IsSupported reports whether code names one of the two practice
// languages users may select.
func IsSupported(code string) bool {
	switch Language(code) {
	case English, Japanese:
		return true
	default:
		return false
	}
}

// DisplayName renders a language code for user-facing messages.
func DisplayName(l Language) string {
	switch l {
	case English:
		return "English"
	case Japanese:
		return "Japanese"
	default:
		return "unknown"
	}
}
