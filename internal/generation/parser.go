package generation

import (
	"fmt"
	"regexp"
	"strings"

	"inova/internal/domain"
)

// Sections holds the three ordered lists found in a completion.
type Sections struct {
	Names        []string
	Slogans      []string
	Descriptions []string
}

const sectionCount = 3

var (
	blankLineRe    = regexp.MustCompile(`\n[ \t]*\n\s*`)
	numberPrefixRe = regexp.MustCompile(`^\d+\s*[.)\-:]\s*`)
)

// ParseTextBlock splits a completion into names, slogans and descriptions.
// The text must hold three blank-line separated sections, each a header line
// followed by exactly count numbered items. Anything else is reported as
// domain.ErrMalformedResponse.
func ParseTextBlock(text string, count int) (Sections, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, `"`, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return Sections{}, fmt.Errorf("%w: empty text", domain.ErrMalformedResponse)
	}

	chunks := blankLineRe.Split(text, -1)
	if len(chunks) != sectionCount {
		return Sections{}, fmt.Errorf("%w: found %d sections, want %d", domain.ErrMalformedResponse, len(chunks), sectionCount)
	}

	lists := make([][]string, 0, sectionCount)
	for i, chunk := range chunks {
		items, err := parseSection(chunk, count)
		if err != nil {
			return Sections{}, fmt.Errorf("%w: section %d: %v", domain.ErrMalformedResponse, i+1, err)
		}
		lists = append(lists, items)
	}
	return Sections{Names: lists[0], Slogans: lists[1], Descriptions: lists[2]}, nil
}

func parseSection(chunk string, count int) ([]string, error) {
	lines := strings.Split(chunk, "\n")
	// first line is the section header
	lines = lines[1:]
	items := make([]string, 0, count)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		item := strings.TrimSpace(numberPrefixRe.ReplaceAllString(line, ""))
		if item == "" {
			return nil, fmt.Errorf("empty item %q", line)
		}
		items = append(items, item)
	}
	if len(items) != count {
		return nil, fmt.Errorf("found %d items, want %d", len(items), count)
	}
	return items, nil
}

// Assemble zips the parsed lists with the image URLs by index.
func Assemble(sections Sections, images []string) ([]domain.GeneratedVariant, error) {
	n := len(sections.Names)
	if len(sections.Slogans) != n || len(sections.Descriptions) != n {
		return nil, fmt.Errorf("%w: uneven sections %d/%d/%d", domain.ErrMalformedResponse, n, len(sections.Slogans), len(sections.Descriptions))
	}
	if len(images) != n {
		return nil, fmt.Errorf("%w: %d names for %d images", domain.ErrMalformedResponse, n, len(images))
	}
	variants := make([]domain.GeneratedVariant, 0, n)
	for i := 0; i < n; i++ {
		variants = append(variants, domain.GeneratedVariant{
			Title:       sections.Names[i],
			Slogan:      sections.Slogans[i],
			Description: sections.Descriptions[i],
			ImageURL:    images[i],
		})
	}
	return variants, nil
}
