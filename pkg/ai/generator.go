// Package ai generates conversation prompts and writing feedback. The
// backend may fail or return malformed content at any time, so every
// entry point degrades to a canned value instead of surfacing an error
// to the person chatting with the bot.
package ai

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Prompt is one bilingual conversation prompt.
type Prompt struct {
	Category string `json:"category"`
	En       string `json:"en"`
	Ja       string `json:"ja"`
}

type Generator interface {
	GeneratePrompt(ctx context.Context) Prompt
	GenerateFeedback(ctx context.Context, text, targetLanguage string) string
	GenerateDetailedExplanation(ctx context.Context, text, targetLanguage string) string
	GenerateReadingAnnotation(ctx context.Context, text string) string
}

var fallbackPrompts = []Prompt{
	{
		Category: "daily life",
		En:       "What did you eat for breakfast today? Describe it in a few sentences.",
		Ja:       "今日の朝ごはんは何を食べましたか？いくつかの文で説明してください。",
	},
	{
		Category: "travel",
		En:       "If you could visit any city next weekend, where would you go and why?",
		Ja:       "来週末にどこかの街に行けるとしたら、どこに行きたいですか？理由も教えてください。",
	},
	{
		Category: "memories",
		En:       "Tell us about a small thing that made you happy this week.",
		Ja:       "今週あった、ちょっと嬉しかったことを教えてください。",
	},
	{
		Category: "hypotheticals",
		En:       "If you had one extra hour every day, how would you spend it?",
		Ja:       "毎日1時間余分にあったら、何に使いますか？",
	},
}

const (
	fallbackFeedbackEn = "Thanks for your submission! Keep writing a little every day; consistency matters more than perfection."
	fallbackFeedbackJa = "提出ありがとうございます！毎日少しずつ書き続けましょう。完璧さよりも継続が大切です。"
)

var (
	fallbackRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	fallbackMu   sync.Mutex
)

// FallbackPrompt picks a canned prompt; used whenever the backend is
// unavailable or returns unparsable content.
func FallbackPrompt() Prompt {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	return fallbackPrompts[fallbackRand.Intn(len(fallbackPrompts))]
}

func FallbackFeedback(targetLanguage string) string {
	if targetLanguage == "ja" {
		return fallbackFeedbackJa
	}
	return fallbackFeedbackEn
}

// Canned serves only the static fallback table. It stands in for the
// real backend when no API key is configured and in tests.
type Canned struct{}

func NewCanned() Canned { return Canned{} }

func (Canned) GeneratePrompt(ctx context.Context) Prompt {
	return FallbackPrompt()
}

func (Canned) GenerateFeedback(ctx context.Context, text, targetLanguage string) string {
	return FallbackFeedback(targetLanguage)
}

func (Canned) GenerateDetailedExplanation(ctx context.Context, text, targetLanguage string) string {
	return FallbackFeedback(targetLanguage)
}

func (Canned) GenerateReadingAnnotation(ctx context.Context, text string) string {
	return text
}
