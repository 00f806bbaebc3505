package completion

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// The legacy completions endpoint only serves instruct models.
const defaultModel = openai.GPT3Dot5TurboInstruct

var modelCanonical = map[string]string{
	openai.GPT3Dot5TurboInstruct: openai.GPT3Dot5TurboInstruct,
	openai.GPT3Babbage002:        openai.GPT3Babbage002,
	openai.GPT3Davinci002:        openai.GPT3Davinci002,
}

var modelAliases = map[string]string{
	"gpt-3.5-instruct":       openai.GPT3Dot5TurboInstruct,
	"gpt35-instruct":         openai.GPT3Dot5TurboInstruct,
	"gpt-35-turbo-instruct":  openai.GPT3Dot5TurboInstruct,
	"gpt-3-5-turbo-instruct": openai.GPT3Dot5TurboInstruct,
	"instruct":               openai.GPT3Dot5TurboInstruct,
	// retired completion models
	"text-davinci-003": openai.GPT3Dot5TurboInstruct,
	"text-davinci-002": openai.GPT3Dot5TurboInstruct,
	"davinci":          openai.GPT3Davinci002,
	"babbage":          openai.GPT3Babbage002,
}

// normalizeModel resolves name to a completion model. The second value is
// "alias" or "defaulted" when the requested name was rewritten.
func normalizeModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := modelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := modelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultModel, "defaulted"
}
