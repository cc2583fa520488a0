package localize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// single text item to translate
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for text translation
type Translator interface {
	Translate(ctx context.Context, items []Item) ([]Result, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// environment variable holding the provider's API key
func (p Provider) KeyEnv() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

type Options struct {
	// display name, e.g. "Japanese"
	TargetLanguage string
	Model          string
	Prompt         string
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	var (
		tr  Translator
		err error
	)
	switch provider {
	case ProviderGemini:
		tr, err = NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		tr, err = NewOpenAITranslator(apiKey, opts)
	case ProviderAnthropic:
		tr, err = NewAnthropicTranslator(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// ParseLanguage validates a BCP 47 tag and returns it with its English name.
// English targets report isEnglish so callers can skip translation.
func ParseLanguage(tag string) (t language.Tag, name string, isEnglish bool, err error) {
	t, err = language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return language.Und, "", false, fmt.Errorf("invalid language %q: %w", tag, err)
	}

	base, _ := t.Base()
	english, _ := language.English.Base()

	name = display.English.Tags().Name(t)
	if name == "" {
		name = t.String()
	}
	return t, name, base == english, nil
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"Translate the following on-screen texts and voiceover lines of a mobile game promo video to %s.\n\n",
		opts.TargetLanguage,
	))

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Keep the tone short, warm and promotional.\n")
	sb.WriteString("2. Keep the product name \"Pixel Fish Tank\" and \"Google Play\" in English.\n")
	sb.WriteString("3. Keep web addresses unchanged.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("6. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
