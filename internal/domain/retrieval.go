package domain

// ResponseSource identifies which knowledge mode grounded a chat response.
type ResponseSource string

const (
	ResponseSourceKnowledgeBase ResponseSource = "knowledge_base"
	ResponseSourceGeneralAI     ResponseSource = "general_ai"
)

// Citation identifies the expert and publication behind a selected entry.
type Citation struct {
	Expert    string
	Source    string
	SourceURL string
}

// RetrievalDecision is the per-turn outcome of routing a user query against
// the knowledge base. It is created fresh for each incoming message and is
// not persisted.
type RetrievalDecision struct {
	UsedExpertKnowledge bool
	ResponseSource      ResponseSource
	Entries             []*KnowledgeEntry
	HighestSimilarity   float64
}

// Sources returns the citation list for the selected entries, deduplicated
// by (expert, source) pair with first-seen order preserved.
func (d *RetrievalDecision) Sources() []Citation {
	seen := make(map[string]bool, len(d.Entries))
	sources := make([]Citation, 0, len(d.Entries))
	for _, entry := range d.Entries {
		key := entry.Expert + "|" + entry.Source
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, Citation{
			Expert:    entry.Expert,
			Source:    entry.Source,
			SourceURL: entry.SourceURL,
		})
	}
	return sources
}
