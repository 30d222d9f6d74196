package service

import (
	"testing"

	"github.com/kindred-health/kindred/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clozapineEntry() *domain.KnowledgeEntry {
	return &domain.KnowledgeEntry{
		ID:       "clozapine-1",
		Expert:   "Dr. Robert Laitman",
		Source:   "Team Daniel",
		Category: "clozapine",
		Title:    "Clozapine as Gold Standard Treatment",
		Content:  "Clozapine is the only FDA-approved medication for treatment-resistant schizophrenia.",
		Keywords: []string{"clozapine", "treatment-resistant", "schizophrenia"},
	}
}

func leapEntry() *domain.KnowledgeEntry {
	return &domain.KnowledgeEntry{
		ID:       "leap-1",
		Expert:   "Dr. Xavier Amador",
		Source:   "LEAP Institute",
		Category: "communication",
		Title:    "The LEAP Method for Treatment Refusal",
		Content:  "LEAP is an evidence-based communication approach for people who don't believe they are ill.",
		Keywords: []string{"LEAP", "communication", "treatment refusal"},
	}
}

func TestKeywordScorer_TitleAndCategoryBoost(t *testing.T) {
	scorer := NewKeywordScorer()
	entries := []*domain.KnowledgeEntry{leapEntry(), clozapineEntry()}

	results := scorer.ScoreEntries("What is Clozapine?", entries, 3)

	require.NotEmpty(t, results)
	assert.Equal(t, "clozapine-1", results[0].ID)
}

func TestKeywordScorer_ClozapineScoreAtLeastTitlePlusBoost(t *testing.T) {
	// Raw scoring check: "clozapine" hits the title (+10), a keyword (+8),
	// the content (+3), and the category boost (+15).
	scorer := NewKeywordScorer()
	entry := clozapineEntry()

	score := scorer.scoreEntry("what is clozapine?", tokenize("what is clozapine?"), entry)

	assert.GreaterOrEqual(t, score, 25)
}

func TestTokenize_StripsPunctuation(t *testing.T) {
	assert.Equal(t, []string{"what", "clozapine"}, tokenize("what is clozapine?"))
	assert.Equal(t, []string{"won", "take", "meds"}, tokenize("he won't take meds!"))
}

func TestKeywordScorer_ShortTokensIgnored(t *testing.T) {
	scorer := NewKeywordScorer()
	entry := &domain.KnowledgeEntry{
		ID:       "short",
		Category: "general",
		Title:    "is it ok",
		Content:  "is it ok is it ok",
		Keywords: []string{"is", "it", "ok"},
	}

	results := scorer.ScoreEntries("is it ok", []*domain.KnowledgeEntry{entry}, 3)

	assert.Empty(t, results)
}

func TestKeywordScorer_ZeroScoreEntriesDropped(t *testing.T) {
	scorer := NewKeywordScorer()
	entries := []*domain.KnowledgeEntry{clozapineEntry()}

	results := scorer.ScoreEntries("quantum chromodynamics", entries, 3)

	assert.Empty(t, results)
}

func TestKeywordScorer_LimitRespected(t *testing.T) {
	scorer := NewKeywordScorer()
	entries := []*domain.KnowledgeEntry{}
	for i := 0; i < 5; i++ {
		e := clozapineEntry()
		e.ID = string(rune('a' + i))
		entries = append(entries, e)
	}

	results := scorer.ScoreEntries("clozapine", entries, 2)

	assert.Len(t, results, 2)
}

func TestKeywordScorer_MultiCategoryBoostRule(t *testing.T) {
	// "refuse" triggers the communication/anosognosia rule, lifting the LEAP
	// entry even though "refuse" only appears in the title via "refusal".
	scorer := NewKeywordScorer()
	entries := []*domain.KnowledgeEntry{clozapineEntry(), leapEntry()}

	results := scorer.ScoreEntries("my son refuses help", entries, 3)

	require.NotEmpty(t, results)
	assert.Equal(t, "leap-1", results[0].ID)
}

func TestKeywordScorer_CustomRules(t *testing.T) {
	rules := []CategoryBoostRule{
		{Triggers: []string{"sleep"}, Categories: []string{"symptoms"}, Bonus: 50},
	}
	scorer := NewKeywordScorerWithRules(rules)
	symptomEntry := &domain.KnowledgeEntry{
		ID:       "symptoms-1",
		Category: "symptoms",
		Title:    "Understanding Psychotic Symptoms",
		Content:  "Sleep disturbances can precede psychosis.",
		Keywords: []string{"symptoms"},
	}

	results := scorer.ScoreEntries("trouble with sleep", []*domain.KnowledgeEntry{symptomEntry}, 3)

	require.Len(t, results, 1)
	assert.Equal(t, "symptoms-1", results[0].ID)
}

func TestKeywordScorer_StableOrderOnTies(t *testing.T) {
	scorer := NewKeywordScorer()
	first := clozapineEntry()
	first.ID = "first"
	second := clozapineEntry()
	second.ID = "second"

	results := scorer.ScoreEntries("clozapine", []*domain.KnowledgeEntry{first, second}, 3)

	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].ID)
	assert.Equal(t, "second", results[1].ID)
}
