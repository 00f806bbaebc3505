package completion

import (
	"fmt"
	"strings"

	"inova/internal/domain"
)

const ideasPromptPT = `Você está criando um aplicativo que gera nomes, slogans e pequenas descrições para novas empresas com base em uma ideia fornecida pelo usuário. Seu aplicativo precisa gerar %[1]d opções para cada categoria. Dada a seguinte ideia do usuário, forneça %[1]d opções para cada categoria em português:

Ideia do usuário: %[2]s

Nomes do negócio, até duas palavras:
%[3]s
Slogans:
%[3]s
Descrição:
%[3]s
`

const ideasPromptEN = `You're building an app that generates names, slogans, and small descriptions for new companies based on a user-provided idea. Your app needs to generate %[1]d options for each category. Given the following idea from the user, provide %[1]d options for each category:

User idea: %[2]s

Company Names:
%[3]s
Slogans:
%[3]s
Small Descriptions:
%[3]s
`

// BuildIdeasPrompt renders the names/slogans/descriptions prompt in the
// language of locale. The answer is expected to mirror the numbered skeleton.
func BuildIdeasPrompt(userIdea, locale string) string {
	tmpl := ideasPromptPT
	if domain.NormalizeLocale(locale) == domain.LocaleEnglish {
		tmpl = ideasPromptEN
	}
	return fmt.Sprintf(tmpl, domain.VariantCount, strings.TrimSpace(userIdea), numberedSkeleton(domain.VariantCount))
}

func numberedSkeleton(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d.\n", i)
	}
	return b.String()
}
