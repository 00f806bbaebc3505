package imagegen

import (
	"strings"
	"testing"

	"inova/internal/domain"
)

func TestBuildLogoPrompt(t *testing.T) {
	cases := []struct {
		name string
		req  domain.GenerationRequest
		want string
	}{
		{
			name: "description only",
			req:  domain.GenerationRequest{Description: "padaria artesanal", Locale: "pt"},
			want: "mdjrny-v4 style a logo for a business with the following idea in Portuguese: padaria artesanal. simple, vector, The output should be solely a logo. --no text",
		},
		{
			name: "style hint",
			req:  domain.GenerationRequest{Description: "padaria artesanal", StyleHint: "minimalista", Locale: "pt"},
			want: "mdjrny-v4 style a logo for a business with the following idea in Portuguese: padaria artesanal. minimalista, simple, vector, The output should be solely a logo. --no text",
		},
		{
			name: "english with color",
			req:  domain.GenerationRequest{Description: "craft bakery", StyleHint: "retro", ColorHint: "#ff8800", Locale: "en"},
			want: "mdjrny-v4 style a logo for a business with the following idea in English: craft bakery. retro, main color #ff8800, simple, vector, The output should be solely a logo. --no text",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildLogoPrompt(tc.req); got != tc.want {
				t.Fatalf("prompt = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildLogoPromptSuppressesText(t *testing.T) {
	got := BuildLogoPrompt(domain.GenerationRequest{Description: "x"})
	if !strings.HasSuffix(got, "--no text") {
		t.Fatalf("prompt must end with the negative text instruction: %s", got)
	}
}
