package lang

import (
	"strings"
	"testing"
)

func TestClassifyJapanese(t *testing.T) {
	cases := []string{
		"こんにちは",
		"カタカナ",
		"日本語",
		"This is mostly English but ends with ね",
		"混ざった text with kanji",
		"これは簡単な文です",
	}
	for _, text := range cases {
		if got := Classify(text); got != Japanese {
			t.Errorf("Classify(%q) = %q, want ja", text, got)
		}
	}
}

func TestClassifyEnglish(t *testing.T) {
	cases := []string{
		"Hello, world!",
		"I went to the store yesterday.",
		"What's up? (not much)",
		"one-two-three",
	}
	for _, text := range cases {
		if got := Classify(text); got != English {
			t.Errorf("Classify(%q) = %q, want en", text, got)
		}
	}
}

func TestClassifyLongTextFallback(t *testing.T) {
	// Contains é so the ASCII pattern fails; no Japanese runes.
	base := "café culture is overrated according to my neighbour"
	long := base + " " + strings.Repeat("x", LongTextThreshold)
	if got := Classify(long); got != English {
		t.Errorf("Classify(long non-ASCII) = %q, want en", got)
	}

	short := "café"
	if got := Classify(short); got != Unknown {
		t.Errorf("Classify(%q) = %q, want unknown", short, got)
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	// "é" breaks the ASCII rule without adding Japanese runes, so the
	// decision rests entirely on the rune-length threshold.
	atThreshold := "é" + strings.Repeat("a", LongTextThreshold-1)
	if got := Classify(atThreshold); got != Unknown {
		t.Errorf("Classify at threshold length = %q, want unknown", got)
	}
	overThreshold := "é" + strings.Repeat("a", LongTextThreshold)
	if got := Classify(overThreshold); got != English {
		t.Errorf("Classify above threshold length = %q, want en", got)
	}
}

func TestClassifyJapaneseWinsOverLength(t *testing.T) {
	text := strings.Repeat("a", LongTextThreshold*2) + "ね"
	if got := Classify(text); got != Japanese {
		t.Errorf("Classify(long text with hiragana) = %q, want ja", got)
	}
}

func TestClassifyEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		if got := Classify(text); got != Unknown {
			t.Errorf("Classify(%q) = %q, want unknown", text, got)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("en") || !IsSupported("ja") {
		t.Error("en and ja should be supported")
	}
	for _, code := range []string{"", "fr", "unknown", "EN"} {
		if IsSupported(code) {
			t.Errorf("IsSupported(%q) = true, want false", code)
		}
	}
}
