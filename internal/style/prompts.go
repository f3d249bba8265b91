package style

import (
	"fmt"
	"strings"

	"github.com/postcraft/backend/internal/posttext"
	"github.com/postcraft/backend/internal/storage/models"
)

const analysisSchema = `{
  "style_profile": "Detailed writing style analysis in paragraph form",
  "metrics": {
    "engagement": number (0-100),
    "consistency": number (0-100),
    "readability": number (0-100),
    "impact": number (0-100),
    "vocabulary_complexity": number (0-100),
    "sentence_variety": number (0-100),
    "hook_strength": number (0-100),
    "cta_effectiveness": number (0-100)
  },
  "writing_style": {
    "tone": "Primary tone (professional, conversational, etc.)",
    "structure": "Detailed description of typical post structure",
    "vocabulary": "Detailed analysis of vocabulary style and level",
    "techniques": ["Array of key writing techniques used"],
    "common_phrases": ["Frequently used phrases or expressions"],
    "paragraph_patterns": ["Common paragraph structures"],
    "hook_patterns": ["Types of hooks used to start posts"],
    "cta_patterns": ["Types of calls-to-action used"]
  }
}`

var analysisFocus = []string{
	"Writing style consistency",
	"Vocabulary patterns and complexity",
	"Sentence structure variety",
	"Hook and introduction patterns",
	"Call-to-action patterns",
	"Engagement techniques",
	"Overall tone and voice",
}

var styleRules = []string{
	"Start with one of the user's typical hook patterns",
	"Maintain the user's sentence structure variety",
	"Use their common phrases naturally",
	"Follow their paragraph organization",
	"End with their typical CTA style",
	"Keep the overall voice consistent while incorporating the requested tone adjustment",
}

const standardInstruction = "Make it engaging, professional, and optimized for LinkedIn's format."

// BuildAnalysisPrompt asks for the JSON style analysis of the given posts.
// Posts pasted as HTML are reduced to their text first.
func BuildAnalysisPrompt(posts []string) string {
	var b strings.Builder

	b.WriteString("Analyze these LinkedIn posts and provide a detailed analysis in the following JSON format:\n")
	b.WriteString(analysisSchema)
	b.WriteString("\n\nAnalyze these posts in detail, focusing on:\n")
	for i, focus := range analysisFocus {
		fmt.Fprintf(&b, "%d. %s\n", i+1, focus)
	}

	cleaned := make([]string, len(posts))
	for i, post := range posts {
		cleaned[i] = posttext.PlainText(post)
	}

	b.WriteString("\nPosts to analyze:\n")
	b.WriteString(strings.Join(cleaned, "\n\n"))

	return b.String()
}

// BuildGenerationPrompt renders the styled template when ws is non-nil and
// the standard template otherwise.
func BuildGenerationPrompt(req GenerationRequest, ws *models.WritingStyle) string {
	if ws == nil {
		return buildStandardPrompt(req)
	}
	return buildStyledPrompt(req, ws)
}

func buildStandardPrompt(req GenerationRequest) string {
	var b strings.Builder

	b.WriteString("Generate a LinkedIn post with the following specifications:\n")
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "Length: %s\n", req.Length)
	writeContext(&b, req.Context)
	b.WriteString("\n")
	b.WriteString(standardInstruction)

	return b.String()
}

func buildStyledPrompt(req GenerationRequest, ws *models.WritingStyle) string {
	var b strings.Builder

	b.WriteString("Generate a LinkedIn post that precisely matches this writing style profile:\n\n")
	fmt.Fprintf(&b, "Tone: %s\n", ws.Tone)
	fmt.Fprintf(&b, "Structure: %s\n", ws.Structure)
	fmt.Fprintf(&b, "Vocabulary Style: %s\n", ws.Vocabulary)
	fmt.Fprintf(&b, "Writing Techniques: %s\n", strings.Join(ws.Techniques, ", "))

	b.WriteString("\nCommon Patterns to Follow:\n")
	fmt.Fprintf(&b, "- Hooks: %s\n", strings.Join(ws.HookPatterns, ", "))
	fmt.Fprintf(&b, "- Paragraph Structure: %s\n", strings.Join(ws.ParagraphPatterns, ", "))
	fmt.Fprintf(&b, "- Common Phrases: %s\n", strings.Join(ws.CommonPhrases, ", "))
	fmt.Fprintf(&b, "- Call-to-Action Styles: %s\n", strings.Join(ws.CTAPatterns, ", "))

	fmt.Fprintf(&b, "\nTopic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Preferred Tone Adjustment: %s\n", req.Tone)
	fmt.Fprintf(&b, "Length: %s\n", req.Length)
	writeContext(&b, req.Context)

	b.WriteString("\nImportant:\n")
	for i, rule := range styleRules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeContext(b *strings.Builder, context string) {
	if strings.TrimSpace(context) == "" {
		return
	}
	fmt.Fprintf(b, "Additional Context: %s\n", context)
}
