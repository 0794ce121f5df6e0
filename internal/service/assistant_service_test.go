package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"teamfit/internal/domain"
	"teamfit/internal/llm"
)

type fakeIndexRepo struct {
	entries     []domain.CandidateIndexEntry
	searchErr   error
	replaceErr  error
	countErr    error
	lastSearchK int
}

func (f *fakeIndexRepo) ReplaceAll(ctx context.Context, entries []domain.CandidateIndexEntry) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.entries = entries
	return nil
}

func (f *fakeIndexRepo) SearchNearest(ctx context.Context, embedding pgvector.Vector, k int) ([]domain.RetrievedCandidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.lastSearchK = k
	results := make([]domain.RetrievedCandidate, 0, len(f.entries))
	for i, e := range f.entries {
		if i >= k {
			break
		}
		results = append(results, domain.RetrievedCandidate{
			CandidateIndexEntry:  e,
			VectorRelevanceScore: 1.0 - float64(i)*0.1,
		})
	}
	return results, nil
}

func (f *fakeIndexRepo) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.entries), nil
}

func (f *fakeIndexRepo) RecommendationCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, e := range f.entries {
		counts[e.Recommendation]++
	}
	return counts, nil
}

func indexEntry(id, name string, extraversion, score float64) domain.CandidateIndexEntry {
	traits := domain.NeutralTraits()
	traits.Extraversion = extraversion
	return domain.CandidateIndexEntry{
		CandidateID:        id,
		Name:               name,
		Position:           "Developer",
		CompatibilityScore: score,
		Recommendation:     domain.RecommendationRecommended,
		Summary:            "summary for " + name,
		Strengths:          []string{"strength"},
		Concerns:           []string{"concern"},
		Traits:             traits,
	}
}

func newTestAssistant(client llm.Client, index *fakeIndexRepo) *AssistantService {
	return NewAssistantService(zap.NewNop(), client, index, nil, nil, "chat-model", "embed-model", "candidates", 5).
		WithClock(func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) })
}

func TestQuery_RerankByCandidateID(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Tranquilo", 0.1, 0.6),
		indexEntry("c2", "Medio", 0.5, 0.7),
		indexEntry("c3", "Sociable", 0.85, 0.8),
	}}
	client := &llm.MockClient{
		Embedding: []float32{0.1, 0.2, 0.3},
		Response: `{
			"analysis": "ranked by extraversion",
			"ranked_candidates": [
				{"candidate_id": "c3", "name": "Sociable", "rank": 1, "relevance_reasoning": "highest extraversion", "key_traits": ["extraversion"]},
				{"candidate_id": "c2", "name": "Medio", "rank": 2, "relevance_reasoning": "moderate extraversion", "key_traits": []}
			]
		}`,
	}
	svc := newTestAssistant(client, index)

	response := svc.Query(context.Background(), "who is the most outgoing?", 2)
	if response.Error != "" {
		t.Fatalf("expected no error, got %q", response.Error)
	}
	if response.ResultsCount != 2 {
		t.Fatalf("expected 2 results, got %d", response.ResultsCount)
	}
	if response.Candidates[0].CandidateID != "c3" || response.Candidates[0].LLMRank != 1 {
		t.Fatalf("expected c3 ranked first, got %+v", response.Candidates[0])
	}
	if response.Candidates[0].RelevanceReasoning != "highest extraversion" {
		t.Fatalf("unexpected reasoning: %q", response.Candidates[0].RelevanceReasoning)
	}
	if response.RetrievalCount != 3 {
		t.Fatalf("expected retrieval count 3, got %d", response.RetrievalCount)
	}
}

func TestQuery_RetrievalPoolIsTripleTheLimitCapped(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Ana", 0.5, 0.7),
	}}
	client := &llm.MockClient{
		Embedding: []float32{0.1},
		Response:  `{"ranked_candidates": [{"candidate_id": "c1", "name": "Ana", "rank": 1, "relevance_reasoning": "only one"}]}`,
	}
	svc := newTestAssistant(client, index)

	svc.Query(context.Background(), "anyone", 2)
	if index.lastSearchK != 6 {
		t.Fatalf("expected retrieval pool of 6 for limit 2, got %d", index.lastSearchK)
	}

	svc.Query(context.Background(), "anyone", 5)
	if index.lastSearchK != 10 {
		t.Fatalf("expected retrieval pool capped at 10, got %d", index.lastSearchK)
	}
}

func TestQuery_UnknownIDFallsBackToNameMatch(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Ana", 0.5, 0.7),
	}}
	client := &llm.MockClient{
		Embedding: []float32{0.1},
		Response:  `{"ranked_candidates": [{"name": "Ana", "rank": 1, "relevance_reasoning": "by name only"}]}`,
	}
	svc := newTestAssistant(client, index)

	response := svc.Query(context.Background(), "anyone", 1)
	if response.ResultsCount != 1 || response.Candidates[0].CandidateID != "c1" {
		t.Fatalf("expected name fallback match, got %+v", response)
	}
}

func TestQuery_EmptyIndexReturnsErrorResponse(t *testing.T) {
	svc := newTestAssistant(&llm.MockClient{Embedding: []float32{0.1}}, &fakeIndexRepo{})

	response := svc.Query(context.Background(), "anyone", 3)
	if response.Error != "No candidates found in vector search" {
		t.Fatalf("expected no-candidates error, got %q", response.Error)
	}
	if response.ResultsCount != 0 || len(response.Candidates) != 0 {
		t.Fatalf("expected empty candidate list, got %+v", response)
	}
	if response.Candidates == nil {
		t.Fatalf("expected empty slice, not nil")
	}
}

func TestQuery_UnparseableRerankUsesFallbackRanking(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Primera", 0.5, 0.8),
		indexEntry("c2", "Segunda", 0.5, 0.7),
	}}
	client := &llm.MockClient{
		Embedding: []float32{0.1},
		Response:  "I cannot produce JSON today",
	}
	svc := newTestAssistant(client, index)

	response := svc.Query(context.Background(), "anyone", 2)
	if response.ResultsCount != 2 {
		t.Fatalf("expected 2 fallback results, got %d", response.ResultsCount)
	}
	first := response.Candidates[0]
	if first.CandidateID != "c1" || first.LLMRank != 1 {
		t.Fatalf("expected retrieval order preserved, got %+v", first)
	}
	if first.RelevanceReasoning != "Selected based on vector similarity and compatibility score" {
		t.Fatalf("unexpected fallback reasoning: %q", first.RelevanceReasoning)
	}
}

func TestQuery_LLMFailureReturnsRawRetrieval(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Primera", 0.5, 0.8),
		indexEntry("c2", "Segunda", 0.5, 0.7),
		indexEntry("c3", "Tercera", 0.5, 0.6),
	}}
	embedOK := &llm.MockClient{
		Embedding: []float32{0.1},
		CompleteFn: func(ctx context.Context, model string, messages []llm.Message) (string, error) {
			return "", errors.New("provider down")
		},
	}
	svc := newTestAssistant(embedOK, index)

	response := svc.Query(context.Background(), "anyone", 2)
	if response.Error != "" {
		t.Fatalf("expected degraded success, got error %q", response.Error)
	}
	if response.ResultsCount != 2 {
		t.Fatalf("expected truncation to limit 2, got %d", response.ResultsCount)
	}
	if response.Candidates[0].LLMRank != 0 || response.Candidates[0].RelevanceReasoning != "" {
		t.Fatalf("expected raw results without ranking annotations, got %+v", response.Candidates[0])
	}
}

func TestQuery_EmbeddingFailureReturnsErrorResponse(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Ana", 0.5, 0.7),
	}}
	client := &llm.MockClient{EmbedErr: errors.New("embedding service down")}
	svc := newTestAssistant(client, index)

	response := svc.Query(context.Background(), "anyone", 2)
	if response.Error == "" {
		t.Fatalf("expected error response on embedding failure")
	}
	if !strings.Contains(response.Error, "embed query") {
		t.Fatalf("expected embed error surfaced, got %q", response.Error)
	}
}

func TestSyncFromResult_BuildsIndexEntries(t *testing.T) {
	index := &fakeIndexRepo{}
	client := &llm.MockClient{Embedding: []float32{0.1, 0.2}}
	svc := newTestAssistant(client, index)

	result := &domain.AnalysisResult{
		CandidatesAnalysis: []domain.CandidateAnalysis{
			{
				CandidateInfo: domain.CandidateInfo{
					ID: "c1", Name: "Ana", Position: "Frontend Dev",
					PersonalityTraits: map[string]float64{
						"openness": 0.8, "conscientiousness": 0.6, "extraversion": 0.9,
						"agreeableness": 0.7, "neuroticism": 0.2,
					},
				},
				AIAnalysis: domain.CompatibilityJudgment{
					Summary:   "great fit",
					Strengths: []string{"communication"},
					Concerns:  []string{"none"},
				},
				OverallRecommendation: domain.Recommendation{
					Status:        domain.RecommendationHighly,
					CombinedScore: 0.85,
				},
			},
		},
	}

	count, err := svc.SyncFromResult(context.Background(), result)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 1 || len(index.entries) != 1 {
		t.Fatalf("expected 1 synced entry, got count=%d entries=%d", count, len(index.entries))
	}

	entry := index.entries[0]
	if entry.CandidateID != "c1" || entry.CompatibilityScore != 0.85 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.SearchableText == "" {
		t.Fatalf("expected searchable text populated")
	}
	if client.EmbedCalls != 1 {
		t.Fatalf("expected one embedding call, got %d", client.EmbedCalls)
	}

	stats := svc.Stats(context.Background())
	if stats.TotalCandidates != 1 {
		t.Fatalf("expected 1 candidate in stats, got %d", stats.TotalCandidates)
	}
	if stats.RecommendationsDistribution[domain.RecommendationHighly] != 1 {
		t.Fatalf("unexpected distribution: %v", stats.RecommendationsDistribution)
	}
	if stats.CollectionName != "candidates" {
		t.Fatalf("unexpected collection name: %q", stats.CollectionName)
	}
}

func TestSyncFromResult_EmbeddingFailureAborts(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("old", "Vieja", 0.5, 0.6),
	}}
	client := &llm.MockClient{EmbedErr: errors.New("embedding down")}
	svc := newTestAssistant(client, index)

	result := &domain.AnalysisResult{
		CandidatesAnalysis: []domain.CandidateAnalysis{
			{CandidateInfo: domain.CandidateInfo{ID: "c1", Name: "Ana"}},
		},
	}
	if _, err := svc.SyncFromResult(context.Background(), result); err == nil {
		t.Fatalf("expected error on embedding failure")
	}
	if len(index.entries) != 1 || index.entries[0].CandidateID != "old" {
		t.Fatalf("expected old index untouched on failure, got %+v", index.entries)
	}
}

func TestBuildSearchableText_TraitThresholds(t *testing.T) {
	entry := indexEntry("c1", "Ana", 0.9, 0.8)
	entry.Traits.Openness = 0.8
	entry.Traits.Neuroticism = 0.2

	text := BuildSearchableText(entry)
	for _, fragment := range []string{
		"Name: Ana",
		"highly open to new experiences",
		"outgoing, social, energetic",
		"handles pressure well",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in searchable text:\n%s", fragment, text)
		}
	}
	if strings.Contains(text, "very organized") {
		t.Fatalf("expected no conscientiousness phrase for neutral value")
	}
}

type fakeQueryCache struct {
	stored map[string]domain.QueryResponse
}

func (f *fakeQueryCache) Get(query string, limit int) (domain.QueryResponse, bool) {
	resp, ok := f.stored[fmt.Sprintf("%s:%d", query, limit)]
	return resp, ok
}

func (f *fakeQueryCache) Set(response domain.QueryResponse, limit int) {
	f.stored[fmt.Sprintf("%s:%d", response.Query, limit)] = response
}

func TestQuery_CacheHitSkipsRetrieval(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Ana", 0.5, 0.7),
	}}
	client := &llm.MockClient{
		Embedding: []float32{0.1},
		Response:  `{"ranked_candidates": [{"candidate_id": "c1", "name": "Ana", "rank": 1, "relevance_reasoning": "only one"}]}`,
	}
	cache := &fakeQueryCache{stored: make(map[string]domain.QueryResponse)}
	svc := NewAssistantService(zap.NewNop(), client, index, nil, cache, "chat-model", "embed-model", "candidates", 5)

	first := svc.Query(context.Background(), "anyone", 2)
	if first.ResultsCount != 1 {
		t.Fatalf("expected 1 result, got %d", first.ResultsCount)
	}
	if client.EmbedCalls != 1 {
		t.Fatalf("expected one embedding call, got %d", client.EmbedCalls)
	}

	second := svc.Query(context.Background(), "anyone", 2)
	if client.EmbedCalls != 1 || client.Calls != 1 {
		t.Fatalf("expected cached response without new LLM calls, got embed=%d complete=%d", client.EmbedCalls, client.Calls)
	}
	if second.ResultsCount != first.ResultsCount {
		t.Fatalf("expected identical cached response, got %+v", second)
	}
}

func TestQuery_DegradedResponseNotCached(t *testing.T) {
	index := &fakeIndexRepo{entries: []domain.CandidateIndexEntry{
		indexEntry("c1", "Ana", 0.5, 0.7),
	}}
	client := &llm.MockClient{
		Embedding: []float32{0.1},
		CompleteFn: func(ctx context.Context, model string, messages []llm.Message) (string, error) {
			return "", errors.New("provider down")
		},
	}
	cache := &fakeQueryCache{stored: make(map[string]domain.QueryResponse)}
	svc := NewAssistantService(zap.NewNop(), client, index, nil, cache, "chat-model", "embed-model", "candidates", 5)

	response := svc.Query(context.Background(), "anyone", 2)
	if response.ResultsCount != 1 {
		t.Fatalf("expected raw retrieval result, got %+v", response)
	}
	if len(cache.stored) != 0 {
		t.Fatalf("expected degraded response kept out of the cache, got %v", cache.stored)
	}
}

func TestTruncate_CutsOnRuneBoundary(t *testing.T) {
	// Runas de 3 bytes: el byte 200 cae en medio de una runa.
	long := strings.Repeat("日", 100)
	got := truncate(long, 200)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation suffix, got %q", got[len(got)-10:])
	}
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid UTF-8 after truncation")
	}
	if short := truncate("corto", 200); short != "corto" {
		t.Fatalf("expected short string untouched, got %q", short)
	}
}

func TestRerankPrompt_IncludesCandidateIDsAndScores(t *testing.T) {
	retrieved := []domain.RetrievedCandidate{
		{CandidateIndexEntry: indexEntry("c1", "Ana", 0.85, 0.8)},
	}
	svc := newTestAssistant(&llm.MockClient{}, &fakeIndexRepo{})

	prompt := svc.buildRerankPrompt("outgoing people", retrieved, 1)
	if !strings.Contains(prompt, "[candidate_id: c1]") {
		t.Fatalf("expected candidate id in prompt")
	}
	if !strings.Contains(prompt, fmt.Sprintf("Extraversion: %.2f", 0.85)) {
		t.Fatalf("expected numeric extraversion in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, `Query: "outgoing people"`) {
		t.Fatalf("expected query echoed in prompt")
	}
}
