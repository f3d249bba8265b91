// Package posttext normalizes pasted posts and computes local text
// statistics for them.
package posttext

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
)

const blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote"

var (
	htmlTagPattern   = regexp.MustCompile(`<(?:[a-zA-Z][a-zA-Z0-9]*|/[a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*)?/?>`)
	horizontalSpace  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Length targets in words for each requested post length.
var lengthTargets = map[string][2]int{
	"short":  {50, 150},
	"medium": {150, 250},
	"long":   {250, 400},
}

type Stats struct {
	Words             int     `json:"words"`
	Sentences         int     `json:"sentences"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// IsHTML reports whether the post looks like markup copied from a web page.
func IsHTML(post string) bool {
	return htmlTagPattern.MatchString(post)
}

// PlainText returns the readable text of a post. Markup is stripped while
// paragraph and line breaks survive, since post layout is part of the style.
func PlainText(post string) string {
	if !IsHTML(post) {
		return strings.TrimSpace(post)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(post))
	if err != nil {
		return strings.TrimSpace(post)
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	doc.Find("br").Each(func(i int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find(blockElements).Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n\n")
	})

	return normalize(doc.Text())
}

func normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}

	text = strings.Join(lines, "\n")
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Analyze counts words and sentences. Punctuation tokens are not words.
func Analyze(text string) (Stats, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Stats{}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to tokenize text: %w", err)
	}

	var stats Stats
	for _, tok := range doc.Tokens() {
		if isWord(tok.Text) {
			stats.Words++
		}
	}

	stats.Sentences = len(doc.Sentences())
	if stats.Sentences > 0 {
		stats.AvgSentenceLength = float64(stats.Words) / float64(stats.Sentences)
	}

	return stats, nil
}

func isWord(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// LengthTarget returns the word range for a length category.
func LengthTarget(length string) (lo, hi int, ok bool) {
	target, ok := lengthTargets[length]
	if !ok {
		return 0, 0, false
	}
	return target[0], target[1], true
}

// FitsLength reports whether a word count falls inside the target range of
// the requested length. Unknown categories never fit.
func FitsLength(words int, length string) bool {
	lo, hi, ok := LengthTarget(length)
	return ok && words >= lo && words <= hi
}
