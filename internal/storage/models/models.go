package models

import "time"

// MetricNames lists the eight style scores in the order the analysis prompt
// and the validator use them.
var MetricNames = []string{
	"engagement",
	"consistency",
	"readability",
	"impact",
	"vocabulary_complexity",
	"sentence_variety",
	"hook_strength",
	"cta_effectiveness",
}

// WritingStyleFields lists the eight writing-style properties an analysis
// must carry.
var WritingStyleFields = []string{
	"tone",
	"structure",
	"vocabulary",
	"techniques",
	"common_phrases",
	"paragraph_patterns",
	"hook_patterns",
	"cta_patterns",
}

// StyleMetrics holds scores in [0,100].
type StyleMetrics struct {
	Engagement           float64 `json:"engagement"`
	Consistency          float64 `json:"consistency"`
	Readability          float64 `json:"readability"`
	Impact               float64 `json:"impact"`
	VocabularyComplexity float64 `json:"vocabulary_complexity"`
	SentenceVariety      float64 `json:"sentence_variety"`
	HookStrength         float64 `json:"hook_strength"`
	CTAEffectiveness     float64 `json:"cta_effectiveness"`
}

type WritingStyle struct {
	Tone              string   `json:"tone"`
	Structure         string   `json:"structure"`
	Vocabulary        string   `json:"vocabulary"`
	Techniques        []string `json:"techniques"`
	CommonPhrases     []string `json:"common_phrases"`
	ParagraphPatterns []string `json:"paragraph_patterns"`
	HookPatterns      []string `json:"hook_patterns"`
	CTAPatterns       []string `json:"cta_patterns"`
}

// UserStyle is the single style profile kept per user.
type UserStyle struct {
	UserID        string       `json:"user_id"`
	StyleProfile  string       `json:"style_profile"`
	Metrics       StyleMetrics `json:"metrics"`
	WritingStyle  WritingStyle `json:"writing_style"`
	AnalyzedPosts []string     `json:"analyzed_posts"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// GeneratedContent is one generated post. Rows are only ever appended.
type GeneratedContent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Topic     string    `json:"topic"`
	Tone      string    `json:"tone"`
	Length    string    `json:"length"`
	Context   *string   `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
