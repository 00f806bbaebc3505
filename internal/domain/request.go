package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// VariantCount is the number of variants produced per submission.
	VariantCount = 4
	// DefaultDescriptionMaxLength mirrors the form limit of the web client.
	DefaultDescriptionMaxLength = 70

	maxStyleHintLength = 64
	maxColorHintLength = 32
)

// Supported prompt languages.
const (
	LocalePortuguese = "pt"
	LocaleEnglish    = "en"
)

var (
	hexColorRe   = regexp.MustCompile(`^#?(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	namedColorRe = regexp.MustCompile(`^[\p{L} -]+$`)
)

// GenerationRequest is the user input for a single submission.
type GenerationRequest struct {
	Description string
	StyleHint   string
	ColorHint   string
	Locale      string
}

// Normalize trims every field and fills the locale.
func (r GenerationRequest) Normalize(defaultLocale string) GenerationRequest {
	out := GenerationRequest{
		Description: strings.TrimSpace(r.Description),
		StyleHint:   strings.TrimSpace(r.StyleHint),
		ColorHint:   strings.TrimSpace(r.ColorHint),
		Locale:      NormalizeLocale(r.Locale),
	}
	if strings.TrimSpace(r.Locale) == "" {
		out.Locale = NormalizeLocale(defaultLocale)
	}
	return out
}

// Validate checks the request against the given description bound. A
// non-positive bound falls back to DefaultDescriptionMaxLength.
func (r GenerationRequest) Validate(maxDescription int) error {
	if maxDescription <= 0 {
		maxDescription = DefaultDescriptionMaxLength
	}
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		return InvalidInput("description is required")
	}
	if utf8.RuneCountInString(desc) > maxDescription {
		return InvalidInput("description is too long")
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.StyleHint)) > maxStyleHintLength {
		return InvalidInput("style is too long")
	}
	if color := strings.TrimSpace(r.ColorHint); color != "" {
		if utf8.RuneCountInString(color) > maxColorHintLength {
			return InvalidInput("color is too long")
		}
		if !hexColorRe.MatchString(color) && !namedColorRe.MatchString(color) {
			return InvalidInput("color must be a hex value or a color name")
		}
	}
	return nil
}

// NormalizeLocale collapses a locale tag onto a supported prompt language.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(locale, "en") {
		return LocaleEnglish
	}
	return LocalePortuguese
}

// GeneratedVariant combines the name, slogan, description and image found at
// the same index. The fields are related by position only.
type GeneratedVariant struct {
	Title       string `json:"title"`
	Slogan      string `json:"slogan"`
	Description string `json:"description"`
	ImageURL    string `json:"image"`
}
