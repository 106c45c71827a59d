package s2_sentiment

import (
	"regexp"
	"strings"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/numeric"
)

const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1

	// negationFactor is applied to a negated polar word
	negationFactor = -0.5
)

var tokenPattern = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?|[.!?;]`)

// Classifier assigns a polarity and label to free text
// ⭐ SSOT: 감성 분류는 여기서만
type Classifier struct {
	lexicon *Lexicon
}

// NewClassifier creates a classifier over lex
func NewClassifier(lex *Lexicon) *Classifier {
	return &Classifier{lexicon: lex}
}

// NewDefaultClassifier creates a classifier over the built-in lexicon
func NewDefaultClassifier() (*Classifier, error) {
	lex, err := DefaultLexicon()
	if err != nil {
		return nil, err
	}
	return NewClassifier(lex), nil
}

// Classify labels text. The label is decided on the unrounded polarity;
// the reported score is rounded to two decimals.
func (c *Classifier) Classify(text string) contracts.SentimentResult {
	polarity := c.Polarity(text)

	return contracts.SentimentResult{
		Label: labelFor(polarity),
		Score: numeric.Round2(polarity),
	}
}

// Polarity returns the mean modified polarity of the polar words in text,
// clamped to [-1, 1]. Text without polar words scores 0.
func (c *Classifier) Polarity(text string) float64 {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	var sum float64
	count := 0
	negated := false
	intensity := 1.0

	for _, tok := range tokens {
		switch {
		case isBoundary(tok):
			negated = false
			intensity = 1.0

		case c.lexicon.isNegation(tok):
			negated = true

		default:
			if m, ok := c.lexicon.Intensifiers[tok]; ok {
				intensity *= m
				continue
			}

			p, ok := c.lexicon.Words[tok]
			if !ok {
				// 수식어는 바로 다음 단어에만 적용
				intensity = 1.0
				continue
			}

			p = numeric.Clamp(p*intensity, -1, 1)
			if negated {
				p *= negationFactor
			}

			sum += p
			count++
			negated = false
			intensity = 1.0
		}
	}

	if count == 0 {
		return 0
	}
	return numeric.Clamp(sum/float64(count), -1, 1)
}

func isBoundary(tok string) bool {
	switch tok {
	case ".", "!", "?", ";":
		return true
	}
	return false
}

func labelFor(polarity float64) contracts.Label {
	switch {
	case polarity > positiveThreshold:
		return contracts.LabelPositive
	case polarity < negativeThreshold:
		return contracts.LabelNegative
	default:
		return contracts.LabelNeutral
	}
}
