package service

import (
	"context"
	"log"

	"github.com/kindred-health/kindred/internal/domain"
	"github.com/kindred-health/kindred/internal/similarity"
)

// ConfidenceThreshold is the minimum cosine similarity the best semantic
// match must reach (inclusive) for a response to be grounded in the
// knowledge base. It is deliberately higher than the vector index's own
// similarity floor; the two constants must not be merged.
const ConfidenceThreshold = 0.35

// searchLimit caps how many entries a single routing decision considers.
const searchLimit = 3

// placeholderQuery stands in for the user query on file-only requests so
// semantic search still executes.
const placeholderQuery = "document analysis medical records"

// meetsThreshold reports whether a similarity is confident enough to ground
// a response. The boundary is inclusive: a best match at exactly the
// threshold uses the knowledge base.
func meetsThreshold(sim float64) bool {
	return sim >= ConfidenceThreshold
}

// RetrievalRouter decides, per chat turn, whether to ground the response in
// the curated knowledge base or fall back to general AI knowledge.
type RetrievalRouter struct {
	embedder EmbeddingClient
}

// NewRetrievalRouter creates a new RetrievalRouter instance
func NewRetrievalRouter(embedder EmbeddingClient) *RetrievalRouter {
	return &RetrievalRouter{embedder: embedder}
}

// Route embeds the query, runs semantic search over the entries that have
// cached embeddings, and applies the confidence threshold. Any failure in
// the embedding or search pipeline is logged and degrades to a general_ai
// decision; routing never fails the chat turn.
func (r *RetrievalRouter) Route(ctx context.Context, query string, entries []*domain.KnowledgeEntry) *domain.RetrievalDecision {
	if query == "" {
		query = placeholderQuery
	}

	decision, err := r.routeSemantic(ctx, query, entries)
	if err != nil {
		log.Printf("knowledge search error (continuing without): %v", err)
		return &domain.RetrievalDecision{
			UsedExpertKnowledge: false,
			ResponseSource:      domain.ResponseSourceGeneralAI,
			Entries:             nil,
			HighestSimilarity:   0,
		}
	}

	return decision
}

func (r *RetrievalRouter) routeSemantic(ctx context.Context, query string, entries []*domain.KnowledgeEntry) (*domain.RetrievalDecision, error) {
	queryEmbedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.KnowledgeEntry, len(entries))
	candidates := make([]similarity.Candidate, 0, len(entries))
	for _, entry := range entries {
		if !entry.HasEmbedding() {
			continue
		}
		byID[entry.ID] = entry
		candidates = append(candidates, similarity.Candidate{ID: entry.ID, Vector: entry.Embedding})
	}

	matches, err := similarity.Search(queryEmbedding, candidates, searchLimit)
	if err != nil {
		return nil, err
	}

	highest := 0.0
	if len(matches) > 0 {
		highest = matches[0].Similarity
	}

	selected := make([]*domain.KnowledgeEntry, 0, len(matches))
	for _, m := range matches {
		if meetsThreshold(m.Similarity) {
			selected = append(selected, byID[m.ID])
		}
	}

	used := meetsThreshold(highest)
	source := domain.ResponseSourceKnowledgeBase
	if !used {
		source = domain.ResponseSourceGeneralAI
		selected = nil
	}

	log.Printf("retrieval decision: similarity %.3f vs threshold %.2f => %s", highest, ConfidenceThreshold, source)

	return &domain.RetrievalDecision{
		UsedExpertKnowledge: used,
		ResponseSource:      source,
		Entries:             selected,
		HighestSimilarity:   highest,
	}, nil
}
