package style

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/postcraft/backend/internal/storage/models"
)

// Analysis is a validated LLM style analysis.
type Analysis struct {
	StyleProfile string              `json:"style_profile"`
	Metrics      models.StyleMetrics `json:"metrics"`
	WritingStyle models.WritingStyle `json:"writing_style"`
}

// ParseAnalysis decodes and validates the analysis reply. Any failure is a
// *ValidationError; malformed output is never repaired.
func ParseAnalysis(text string) (*Analysis, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("response is not a JSON object: %v", err)}
	}

	var profile string
	if err := decodeField(raw, "style_profile", &profile); err != nil || strings.TrimSpace(profile) == "" {
		return nil, &ValidationError{Field: "style_profile", Reason: "invalid response structure"}
	}

	var metrics map[string]json.RawMessage
	if err := decodeField(raw, "metrics", &metrics); err != nil || metrics == nil {
		return nil, &ValidationError{Field: "metrics", Reason: "invalid response structure"}
	}

	var writingStyle map[string]json.RawMessage
	if err := decodeField(raw, "writing_style", &writingStyle); err != nil || writingStyle == nil {
		return nil, &ValidationError{Field: "writing_style", Reason: "invalid response structure"}
	}

	analysis := &Analysis{StyleProfile: profile}

	scores := make(map[string]float64, len(models.MetricNames))
	for _, name := range models.MetricNames {
		var value float64
		if err := decodeField(metrics, name, &value); err != nil || value < 0 || value > 100 {
			return nil, &ValidationError{Field: "metrics." + name, Reason: "invalid metric value"}
		}
		scores[name] = value
	}
	analysis.Metrics = models.StyleMetrics{
		Engagement:           scores["engagement"],
		Consistency:          scores["consistency"],
		Readability:          scores["readability"],
		Impact:               scores["impact"],
		VocabularyComplexity: scores["vocabulary_complexity"],
		SentenceVariety:      scores["sentence_variety"],
		HookStrength:         scores["hook_strength"],
		CTAEffectiveness:     scores["cta_effectiveness"],
	}

	ws := &analysis.WritingStyle
	textFields := map[string]*string{
		"tone":       &ws.Tone,
		"structure":  &ws.Structure,
		"vocabulary": &ws.Vocabulary,
	}
	listFields := map[string]*[]string{
		"techniques":         &ws.Techniques,
		"common_phrases":     &ws.CommonPhrases,
		"paragraph_patterns": &ws.ParagraphPatterns,
		"hook_patterns":      &ws.HookPatterns,
		"cta_patterns":       &ws.CTAPatterns,
	}

	for _, name := range models.WritingStyleFields {
		if target, ok := textFields[name]; ok {
			if err := decodeField(writingStyle, name, target); err != nil || strings.TrimSpace(*target) == "" {
				return nil, &ValidationError{Field: "writing_style." + name, Reason: "missing writing style property"}
			}
			continue
		}

		target := listFields[name]
		if err := decodeField(writingStyle, name, target); err != nil || !hasEntries(*target) {
			return nil, &ValidationError{Field: "writing_style." + name, Reason: "missing writing style property"}
		}
	}

	return analysis, nil
}

func decodeField(fields map[string]json.RawMessage, name string, target any) error {
	value, ok := fields[name]
	if !ok || string(value) == "null" {
		return fmt.Errorf("%s is missing", name)
	}
	return json.Unmarshal(value, target)
}

func hasEntries(items []string) bool {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}

func stripCodeFence(response string) string {
	cleaned := strings.TrimSpace(response)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	return strings.TrimSpace(cleaned)
}
