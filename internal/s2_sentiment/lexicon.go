package s2_sentiment

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Lexicon maps words to polarity plus the modifiers that act on them
type Lexicon struct {
	Version      int                `yaml:"version"`
	Words        map[string]float64 `yaml:"words"`
	Intensifiers map[string]float64 `yaml:"intensifiers"`
	Negations    []string           `yaml:"negations"`

	negations map[string]struct{}
}

// DefaultLexicon parses the built-in English lexicon
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(defaultLexicon)
}

// LoadLexicon reads a lexicon YAML file
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	lex, err := ParseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// ParseLexicon decodes and validates lexicon YAML.
// Unknown keys are rejected.
func ParseLexicon(data []byte) (*Lexicon, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var lex Lexicon
	if err := dec.Decode(&lex); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}

	if err := lex.validate(); err != nil {
		return nil, err
	}
	lex.normalize()

	return &lex, nil
}

func (l *Lexicon) validate() error {
	if len(l.Words) == 0 {
		return fmt.Errorf("lexicon has no words")
	}

	for w, p := range l.Words {
		if p < -1 || p > 1 {
			return fmt.Errorf("polarity of %q out of range [-1, 1]: %v", w, p)
		}
	}

	for w, m := range l.Intensifiers {
		if m <= 0 {
			return fmt.Errorf("intensifier %q must be positive: %v", w, m)
		}
	}

	return nil
}

// normalize lowercases every key
func (l *Lexicon) normalize() {
	words := make(map[string]float64, len(l.Words))
	for w, p := range l.Words {
		words[strings.ToLower(w)] = p
	}
	l.Words = words

	intensifiers := make(map[string]float64, len(l.Intensifiers))
	for w, m := range l.Intensifiers {
		intensifiers[strings.ToLower(w)] = m
	}
	l.Intensifiers = intensifiers

	l.negations = make(map[string]struct{}, len(l.Negations))
	for _, w := range l.Negations {
		l.negations[strings.ToLower(w)] = struct{}{}
	}
}

func (l *Lexicon) isNegation(token string) bool {
	if _, ok := l.negations[token]; ok {
		return true
	}
	return strings.HasSuffix(token, "n't")
}
