package routing

import (
	"path/filepath"
	"strings"
)

// Classifier maps a file name to a destination category by extension. The
// table is pure data supplied from configuration; the classifier itself
// holds no state beyond it.
type Classifier struct {
	rules    map[string]string
	fallback string
}

func NewClassifier(rules map[string]string, fallback string) *Classifier {
	normalized := make(map[string]string, len(rules))

	for ext, category := range rules {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[strings.ToLower(ext)] = category
	}

	return &Classifier{
		rules:    normalized,
		fallback: fallback,
	}
}

func (c *Classifier) Classify(name string) string {
	if category, ok := c.rules[strings.ToLower(filepath.Ext(name))]; ok {
		return category
	}

	return c.fallback
}

func (c *Classifier) Fallback() string {
	return c.fallback
}
