package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"google.golang.org/api/option"
)

const (
	promptSystemInstruction = "You are a prompt writer for a bilingual English/Japanese language exchange group. " +
		"Produce one conversation prompt suitable for a short written answer. " +
		"Respond with a single JSON object with keys \"category\", \"en\" and \"ja\", nothing else. " +
		"The en and ja texts must express the same prompt naturally in each language."

	feedbackSystemInstruction = "You are a friendly writing tutor. The learner is practicing the given target language. " +
		"Point out at most two grammar or word-choice issues and suggest a more natural phrasing. " +
		"Be encouraging and keep the whole reply under 120 words. Reply in English with examples in the target language."

	explanationSystemInstruction = "You are a patient language teacher. Explain the grammar of the learner's sentence " +
		"step by step, naming the constructions used. Keep it under 250 words."

	readingSystemInstruction = "Add a hiragana reading gloss in parentheses after every kanji word in the text. " +
		"Return only the annotated text."
)

// Gemini generates prompts and feedback through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() {
	if g != nil && g.client != nil {
		if err := g.client.Close(); err != nil {
			logger.Error("failed to close genai client", "error", err)
		}
	}
}

func (g *Gemini) GeneratePrompt(ctx context.Context) Prompt {
	text, err := g.generate(ctx, promptSystemInstruction,
		"Generate one new conversation prompt for today. Pick a fresh everyday topic.")
	if err != nil {
		logger.Error("prompt generation failed, using fallback", "error", err)
		return FallbackPrompt()
	}
	prompt, err := parsePromptJSON(text)
	if err != nil {
		logger.Error("prompt response unparsable, using fallback", "error", err, "raw", text)
		return FallbackPrompt()
	}
	return prompt
}

func (g *Gemini) GenerateFeedback(ctx context.Context, text, targetLanguage string) string {
	reply, err := g.generate(ctx, feedbackSystemInstruction,
		fmt.Sprintf("Target language: %s\nLearner's text:\n%s", targetLanguage, text))
	if err != nil {
		logger.Error("feedback generation failed, using fallback", "error", err)
		return FallbackFeedback(targetLanguage)
	}
	return reply
}

func (g *Gemini) GenerateDetailedExplanation(ctx context.Context, text, targetLanguage string) string {
	reply, err := g.generate(ctx, explanationSystemInstruction,
		fmt.Sprintf("Target language: %s\nSentence:\n%s", targetLanguage, text))
	if err != nil {
		logger.Error("explanation generation failed, using fallback", "error", err)
		return FallbackFeedback(targetLanguage)
	}
	return reply
}

func (g *Gemini) GenerateReadingAnnotation(ctx context.Context, text string) string {
	reply, err := g.generate(ctx, readingSystemInstruction, text)
	if err != nil {
		logger.Error("reading annotation failed, returning original text", "error", err)
		return text
	}
	return reply
}

func (g *Gemini) generate(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response had no candidates")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("gemini response had no text parts")
	}
	return strings.TrimSpace(out.String()), nil
}

// parsePromptJSON extracts the prompt object from the model output,
// tolerating markdown code fences around the JSON.
func parsePromptJSON(raw string) (Prompt, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var prompt Prompt
	if err := json.Unmarshal([]byte(trimmed), &prompt); err != nil {
		return Prompt{}, fmt.Errorf("invalid prompt JSON: %w", err)
	}
	if prompt.En == "" || prompt.Ja == "" {
		return Prompt{}, fmt.Errorf("prompt JSON missing en or ja text")
	}
	if prompt.Category == "" {
		prompt.Category = "conversation"
	}
	return prompt, nil
}
