package summarize

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy is an extractive summarizer used when no generated summary is
// available. Strategies never return an empty string for non-blank input.
type Strategy interface {
	Name() string
	Summarize(text string) string
}

const (
	FirstMiddleLastName = "first_middle_last"
	LeadTrailName       = "lead_trail"
	TruncateWordsName   = "truncate_words"
)

var strategies = map[string]Strategy{
	FirstMiddleLastName: FirstMiddleLast{},
	LeadTrailName:       LeadTrail{},
	TruncateWordsName:   TruncateWords{Limit: 100},
}

// StrategyByName returns a registered strategy.
func StrategyByName(name string) (Strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown summary strategy %q (known: %s)", name, strings.Join(StrategyNames(), ", "))
	}
	return s, nil
}

// StrategyNames lists the registered strategy names in sorted order.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sentences(text string) []string {
	return strings.Split(text, ". ")
}

// FirstMiddleLast keeps the first, middle and last sentence.
type FirstMiddleLast struct{}

func (FirstMiddleLast) Name() string { return FirstMiddleLastName }

func (FirstMiddleLast) Summarize(text string) string {
	s := sentences(text)
	n := len(s)
	if n <= 3 {
		return text
	}
	return s[0] + ". " + s[n/2] + ". " + s[n-1] + "."
}

// LeadTrail keeps the first two and the last three sentences behind a short
// banner with the document's word count.
type LeadTrail struct{}

func (LeadTrail) Name() string { return LeadTrailName }

func (LeadTrail) Summarize(text string) string {
	s := sentences(text)
	if len(s) <= 5 {
		return text
	}
	picked := make([]string, 0, 5)
	picked = append(picked, s[:2]...)
	picked = append(picked, s[len(s)-3:]...)
	return fmt.Sprintf("### Document Summary ###\n\nThis is a legal document containing approximately %d words. %s.",
		len(strings.Fields(text)), strings.Join(picked, ". "))
}

// TruncateWords keeps the first Limit words.
type TruncateWords struct {
	Limit int
}

func (TruncateWords) Name() string { return TruncateWordsName }

func (t TruncateWords) Summarize(text string) string {
	words := strings.Fields(text)
	if len(words) <= t.Limit {
		return text
	}
	return strings.Join(words[:t.Limit], " ") + "... [Summary truncated]"
}
