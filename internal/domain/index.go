package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// CandidateIndexEntry es una fila del indice vectorial de candidatos.
// El indice se reemplaza completo en cada sync (delete + bulk insert).
type CandidateIndexEntry struct {
	Name               string          `json:"name"`
	Position           string          `json:"position"`
	CandidateID        string          `json:"candidate_id"`
	CompatibilityScore float64         `json:"compatibility_score"`
	Recommendation     string          `json:"recommendation"`
	Summary            string          `json:"summary"`
	Strengths          []string        `json:"strengths"`
	Concerns           []string        `json:"concerns"`
	Traits             TraitVector     `json:"personality_traits"`
	SearchableText     string          `json:"-"`
	Embedding          pgvector.Vector `json:"-"`
	CreatedAt          time.Time       `json:"-"`
}

// RetrievedCandidate es una entrada del indice junto con su score de similitud vectorial.
type RetrievedCandidate struct {
	CandidateIndexEntry
	VectorRelevanceScore float64 `json:"vector_relevance_score"`
}

// RankedCandidate es un candidato recuperado, anotado con el re-ranking del LLM.
// Los campos de ranking quedan vacios cuando se degrada a resultados crudos.
type RankedCandidate struct {
	RetrievedCandidate
	LLMRank            int      `json:"llm_rank,omitempty"`
	RelevanceReasoning string   `json:"relevance_reasoning,omitempty"`
	KeyTraits          []string `json:"key_traits,omitempty"`
}

// QueryResponse es la respuesta siempre bien formada del query RAG.
// Error va poblado en vez de propagar excepciones al caller.
type QueryResponse struct {
	Query          string            `json:"query"`
	ResultsCount   int               `json:"results_count"`
	Candidates     []RankedCandidate `json:"candidates"`
	RetrievalCount int               `json:"retrieval_count,omitempty"`
	Error          string            `json:"error,omitempty"`
	Timestamp      string            `json:"timestamp"`
}

// IndexStats resume el contenido del indice de candidatos.
type IndexStats struct {
	TotalCandidates             int            `json:"total_candidates"`
	RecommendationsDistribution map[string]int `json:"recommendations_distribution"`
	CollectionName              string         `json:"collection_name"`
	Timestamp                   string         `json:"timestamp"`
	Error                       string         `json:"error,omitempty"`
}
