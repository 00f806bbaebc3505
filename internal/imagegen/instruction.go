package imagegen

import (
	"fmt"
	"strings"

	"inova/internal/domain"
)

const (
	logoModelTrigger = "mdjrny-v4 style"
	logoSuffix       = "simple, vector, The output should be solely a logo. --no text"
)

// BuildLogoPrompt renders the image prompt for req. The description stays in
// the user's language and the prompt tells the model which one it is.
func BuildLogoPrompt(req domain.GenerationRequest) string {
	language := "Portuguese"
	if domain.NormalizeLocale(req.Locale) == domain.LocaleEnglish {
		language = "English"
	}
	parts := []string{
		fmt.Sprintf("%s a logo for a business with the following idea in %s: %s.", logoModelTrigger, language, strings.TrimSpace(req.Description)),
	}
	if style := strings.TrimSpace(req.StyleHint); style != "" {
		parts = append(parts, style+",")
	}
	if color := strings.TrimSpace(req.ColorHint); color != "" {
		parts = append(parts, "main color "+color+",")
	}
	parts = append(parts, logoSuffix)
	return strings.Join(parts, " ")
}
