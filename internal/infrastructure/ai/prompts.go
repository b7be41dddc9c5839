package ai

import (
	"fmt"
	"strings"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

var toneInstructions = map[string]string{
	"professional": "Write in a professional, business-like tone",
	"casual":       "Write in a casual, friendly tone",
	"friendly":     "Write in a warm, approachable tone",
	"energetic":    "Write in an energetic, exciting tone",
}

var styleInstructions = map[string]string{
	"modern":  "modern, clean, minimalist design",
	"vintage": "vintage, retro aesthetic",
	"luxury":  "luxury, premium, high-end look",
	"playful": "fun, colorful, playful design",
}

// buildPrompt renders the user prompt for one generation task.
func buildPrompt(req ports.ProviderRequest) string {
	brief := req.Brief
	switch req.Kind {
	case ports.GenerateCaption:
		tone := toneInstructions[strings.ToLower(brief.Tone)]
		if tone == "" {
			tone = toneInstructions["professional"]
		}
		return fmt.Sprintf(`%s for an Instagram advertisement.

Product/Service: %s
Target Audience: %s

Create an engaging Instagram caption that:
1. Captures attention in the first line
2. Describes the product/service benefits
3. Includes a call-to-action
4. Is optimized for Instagram engagement
5. Stays within %d characters

Make it compelling and authentic. Return only the caption text.`,
			tone, brief.Description, brief.TargetAudience, domain.MaxCaptionLength)

	case ports.GenerateHashtags:
		return fmt.Sprintf(`Generate %d relevant hashtags for an Instagram post about:
Product: %s
Target Audience: %s
Caption: %s

Return only the hashtags, one per line, without the # symbol.`,
			domain.MaxHashtags, brief.Description, brief.TargetAudience, req.Caption)

	case ports.GenerateImagePrompt:
		style := styleInstructions[strings.ToLower(brief.Style)]
		if style == "" {
			style = styleInstructions["modern"]
		}
		return fmt.Sprintf(`Create a high-quality Instagram advertisement image description for:
Product: %s
Target Audience: %s
Style: %s

The image should be:
- Instagram-ready (square format, high resolution)
- Visually appealing and professional
- Relevant to the product description
- Optimized for social media engagement

Return only the image description.`,
			brief.Description, brief.TargetAudience, style)
	}
	return brief.Description
}
