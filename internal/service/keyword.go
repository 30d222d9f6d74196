package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kindred-health/kindred/internal/domain"
)

// Lexical match weights per query token.
const (
	titleMatchScore   = 10
	keywordMatchScore = 8
	contentMatchScore = 3

	// minTokenLength drops filler words ("is", "it", "ok") from scoring.
	minTokenLength = 3
)

// CategoryBoostRule adds a bonus to entries in the target categories when
// the raw lowercased query contains any trigger substring. The rules are
// domain content, kept as data so editors can adjust them without code
// changes.
type CategoryBoostRule struct {
	Triggers   []string
	Categories []string
	Bonus      int
}

// DefaultBoostRules maps common family questions onto knowledge categories.
func DefaultBoostRules() []CategoryBoostRule {
	return []CategoryBoostRule{
		{Triggers: []string{"clozapine"}, Categories: []string{"clozapine"}, Bonus: 15},
		{Triggers: []string{"cannabis", "marijuana", "weed", "thc"}, Categories: []string{"cannabis"}, Bonus: 15},
		{Triggers: []string{"leap", "refuse", "denial"}, Categories: []string{"communication", "anosognosia"}, Bonus: 15},
		{Triggers: []string{"anosognosia", "doesn't believe", "won't take"}, Categories: []string{"anosognosia"}, Bonus: 15},
		{Triggers: []string{"recovery", "hope", "better"}, Categories: []string{"recovery"}, Bonus: 10},
		{Triggers: []string{"symptom"}, Categories: []string{"symptoms"}, Bonus: 15},
		{Triggers: []string{"legal", "rights", "hipaa"}, Categories: []string{"legal"}, Bonus: 15},
	}
}

// KeywordScorer ranks knowledge entries by lexical overlap with a query.
// It is deterministic, makes no external calls, and is independent of the
// semantic search pipeline, which makes it a usable fallback when no
// embedding provider is configured.
type KeywordScorer struct {
	rules []CategoryBoostRule
}

// NewKeywordScorer creates a KeywordScorer with the default boost rules
func NewKeywordScorer() *KeywordScorer {
	return NewKeywordScorerWithRules(DefaultBoostRules())
}

// NewKeywordScorerWithRules creates a KeywordScorer with custom boost rules
func NewKeywordScorerWithRules(rules []CategoryBoostRule) *KeywordScorer {
	return &KeywordScorer{rules: rules}
}

type scoredEntry struct {
	entry *domain.KnowledgeEntry
	score int
}

// ScoreEntries ranks entries against the query, dropping entries with no
// positive score and truncating to limit. Results are sorted descending by
// score, stable on ties.
func (s *KeywordScorer) ScoreEntries(query string, entries []*domain.KnowledgeEntry, limit int) []*domain.KnowledgeEntry {
	queryLower := strings.ToLower(query)
	tokens := tokenize(queryLower)

	scored := make([]scoredEntry, 0, len(entries))
	for _, entry := range entries {
		score := s.scoreEntry(queryLower, tokens, entry)
		if score <= 0 {
			continue
		}
		scored = append(scored, scoredEntry{entry: entry, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	result := make([]*domain.KnowledgeEntry, len(scored))
	for i, se := range scored {
		result[i] = se.entry
	}
	return result
}

func (s *KeywordScorer) scoreEntry(queryLower string, tokens []string, entry *domain.KnowledgeEntry) int {
	titleLower := strings.ToLower(entry.Title)
	contentLower := strings.ToLower(entry.Content)
	keywordsLower := make([]string, len(entry.Keywords))
	for i, k := range entry.Keywords {
		keywordsLower[i] = strings.ToLower(k)
	}

	score := 0
	for _, token := range tokens {
		if strings.Contains(titleLower, token) {
			score += titleMatchScore
		}
		if keywordContains(keywordsLower, token) {
			score += keywordMatchScore
		}
		if strings.Contains(contentLower, token) {
			score += contentMatchScore
		}
	}

	for _, rule := range s.rules {
		if !anyTriggerMatches(queryLower, rule.Triggers) {
			continue
		}
		for _, category := range rule.Categories {
			if entry.Category == category {
				score += rule.Bonus
				break
			}
		}
	}

	return score
}

// tokenize splits on any non-alphanumeric rune so punctuation attached to a
// word ("clozapine?") cannot mask a match, then drops short filler tokens.
func tokenize(queryLower string) []string {
	words := strings.FieldsFunc(queryLower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := words[:0]
	for _, w := range words {
		if len(w) >= minTokenLength {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func keywordContains(keywordsLower []string, token string) bool {
	for _, k := range keywordsLower {
		if strings.Contains(k, token) {
			return true
		}
	}
	return false
}

func anyTriggerMatches(queryLower string, triggers []string) bool {
	for _, trigger := range triggers {
		if strings.Contains(queryLower, trigger) {
			return true
		}
	}
	return false
}
