package s2_sentiment

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/stocklens/backend/internal/contracts"
)

const (
	NoArticlesText = "No relevant news articles found for this stock."
	NoContentText  = "No content available for summarization."
)

const (
	summaryMinWords  = 10 // shorter text is returned unchanged
	summarySentences = 3
	summaryMaxChars  = 3000 // characters, not bytes
)

// A sentence ends at a run of terminators followed by whitespace or the
// end of text, so "3.5%" stays inside its sentence.
var sentencePattern = regexp.MustCompile(`(?s).+?(?:[.!?]+(?:\s+|$)|$)`)

// AnalyzeArticles classifies every article in place and returns the slice
func (c *Classifier) AnalyzeArticles(articles []contracts.Article) []contracts.Article {
	for i := range articles {
		res := c.Classify(strings.TrimSpace(articles[i].Text()))
		score := res.Score
		articles[i].Sentiment = res.Label
		articles[i].Score = &score
	}
	return articles
}

// Summarize counts article labels and derives the overall label.
// Unlabelled articles are not counted. Ties (including no polar
// articles) are Neutral.
func Summarize(articles []contracts.Article) contracts.NewsSentimentSummary {
	var summary contracts.NewsSentimentSummary

	for _, a := range articles {
		switch a.Sentiment {
		case contracts.LabelPositive:
			summary.Positive++
		case contracts.LabelNegative:
			summary.Negative++
		case contracts.LabelNeutral:
			summary.Neutral++
		}
	}

	summary.Total = summary.Positive + summary.Negative + summary.Neutral

	summary.Overall = contracts.LabelPositive
	if summary.Negative > summary.Positive {
		summary.Overall = contracts.LabelNegative
	} else if summary.Positive == summary.Negative {
		summary.Overall = contracts.LabelNeutral
	}

	return summary
}

// SummaryText builds an extractive summary of the articles: the three
// sentences with the strongest polarity, kept in their original order.
func (c *Classifier) SummaryText(articles []contracts.Article) string {
	if len(articles) == 0 {
		return NoArticlesText
	}

	parts := make([]string, 0, len(articles))
	for _, a := range articles {
		if t := strings.TrimSpace(a.Text()); t != "" {
			parts = append(parts, t)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return NoContentText
	}
	text = truncateChars(text, summaryMaxChars)

	if len(strings.Fields(text)) < summaryMinWords {
		return text
	}

	type ranked struct {
		pos      int
		sentence string
		weight   float64
	}

	var sentences []ranked
	for _, s := range sentencePattern.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		p := c.Polarity(s)
		if p < 0 {
			p = -p
		}
		sentences = append(sentences, ranked{pos: len(sentences), sentence: s, weight: p})
	}

	if len(sentences) <= summarySentences {
		out := make([]string, len(sentences))
		for i, s := range sentences {
			out[i] = s.sentence
		}
		return strings.Join(out, " ")
	}

	sort.SliceStable(sentences, func(i, j int) bool {
		return sentences[i].weight > sentences[j].weight
	})
	top := sentences[:summarySentences]
	sort.Slice(top, func(i, j int) bool {
		return top[i].pos < top[j].pos
	})

	out := make([]string, len(top))
	for i, s := range top {
		out[i] = s.sentence
	}
	return strings.Join(out, " ")
}

// truncateChars keeps the first n characters of s
func truncateChars(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
