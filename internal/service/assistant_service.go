package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"teamfit/internal/domain"
	"teamfit/internal/llm"
	"teamfit/internal/repository"
)

// Techo absoluto de candidatos recuperados en la etapa de retrieval.
const maxRetrievalPool = 10

const noCandidatesError = "No candidates found in vector search"

// AssistantService es el motor RAG sobre el indice de candidatos: retrieval
// por similitud vectorial y re-ranking via LLM. El query siempre devuelve una
// respuesta bien formada; las fallas degradan a rankings de fallback o a los
// resultados crudos del retrieval, nunca a una excepcion.
type AssistantService struct {
	logger         *zap.Logger
	llmClient      llm.Client
	index          repository.CandidateIndexRepository
	limiter        *RateLimiter
	cache          QueryCache
	chatModel      string
	embeddingModel string
	collectionName string
	maxResults     int
	now            func() time.Time
}

func NewAssistantService(
	logger *zap.Logger,
	llmClient llm.Client,
	index repository.CandidateIndexRepository,
	limiter *RateLimiter,
	cache QueryCache,
	chatModel, embeddingModel, collectionName string,
	maxResults int,
) *AssistantService {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &AssistantService{
		logger:         logger,
		llmClient:      llmClient,
		index:          index,
		limiter:        limiter,
		cache:          cache,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		collectionName: collectionName,
		maxResults:     maxResults,
		now:            time.Now,
	}
}

// WithClock reemplaza el reloj del servicio; pensado para tests deterministas.
func (s *AssistantService) WithClock(now func() time.Time) *AssistantService {
	s.now = now
	return s
}

// SyncFromResult reemplaza el indice completo con los candidatos del resultado
// de analisis: una entrada por candidato, con embedding del texto sintetizado.
func (s *AssistantService) SyncFromResult(ctx context.Context, result *domain.AnalysisResult) (int, error) {
	entries := make([]domain.CandidateIndexEntry, 0, len(result.CandidatesAnalysis))
	createdAt := s.now().UTC()

	for _, analysis := range result.CandidatesAnalysis {
		info := analysis.CandidateInfo
		traits := ValidateTraits(info.PersonalityTraits, nil)

		entry := domain.CandidateIndexEntry{
			Name:               info.Name,
			Position:           info.Position,
			CandidateID:        info.ID,
			CompatibilityScore: analysis.OverallRecommendation.CombinedScore,
			Recommendation:     analysis.OverallRecommendation.Status,
			Summary:            analysis.AIAnalysis.Summary,
			Strengths:          analysis.AIAnalysis.Strengths,
			Concerns:           analysis.AIAnalysis.Concerns,
			Traits:             traits,
			CreatedAt:          createdAt,
		}
		entry.SearchableText = BuildSearchableText(entry)

		if s.limiter != nil {
			if err := s.limiter.WaitIfNeeded(ctx); err != nil {
				return 0, err
			}
		}
		embedding, err := s.llmClient.Embed(ctx, s.embeddingModel, entry.SearchableText)
		if err != nil {
			return 0, fmt.Errorf("embed candidate %s: %w", entry.CandidateID, err)
		}
		entry.Embedding = pgvector.NewVector(embedding)
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		s.logger.Warn("no candidates found in analysis result, index left empty")
	}
	if err := s.index.ReplaceAll(ctx, entries); err != nil {
		return 0, fmt.Errorf("replace candidate index: %w", err)
	}

	s.logger.Info("candidates synced to index", zap.Int("count", len(entries)))
	return len(entries), nil
}

// Query responde una consulta en lenguaje natural sobre el pool de candidatos.
func (s *AssistantService) Query(ctx context.Context, query string, limit int) domain.QueryResponse {
	if limit <= 0 {
		limit = s.maxResults
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(query, limit); ok {
			s.logger.Info("query served from cache", zap.String("query", query))
			return cached
		}
	}

	retrievalLimit := limit * 3
	if retrievalLimit > maxRetrievalPool {
		retrievalLimit = maxRetrievalPool
	}

	retrieved, err := s.retrieve(ctx, query, retrievalLimit)
	if err != nil {
		s.logger.Error("vector retrieval failed", zap.Error(err), zap.String("query", query))
		return s.errorResponse(query, err.Error())
	}
	if len(retrieved) == 0 {
		return s.errorResponse(query, noCandidatesError)
	}

	ranked, degraded := s.rerank(ctx, query, retrieved, limit)

	response := domain.QueryResponse{
		Query:          query,
		ResultsCount:   len(ranked),
		Candidates:     ranked,
		RetrievalCount: len(retrieved),
		Timestamp:      s.now().Format(time.RFC3339),
	}
	s.logger.Info("rag query processed",
		zap.String("query", query),
		zap.Int("retrieved", len(retrieved)),
		zap.Int("returned", len(ranked)),
	)

	if s.cache != nil && !degraded {
		s.cache.Set(response, limit)
	}
	return response
}

// Stats resume el contenido del indice.
func (s *AssistantService) Stats(ctx context.Context) domain.IndexStats {
	stats := domain.IndexStats{
		CollectionName: s.collectionName,
		Timestamp:      s.now().Format(time.RFC3339),
	}

	total, err := s.index.Count(ctx)
	if err != nil {
		s.logger.Error("index count failed", zap.Error(err))
		stats.Error = err.Error()
		return stats
	}
	distribution, err := s.index.RecommendationCounts(ctx)
	if err != nil {
		s.logger.Error("recommendation distribution failed", zap.Error(err))
		stats.Error = err.Error()
		return stats
	}

	stats.TotalCandidates = total
	stats.RecommendationsDistribution = distribution
	return stats
}

func (s *AssistantService) retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedCandidate, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitIfNeeded(ctx); err != nil {
			return nil, err
		}
	}
	embedding, err := s.llmClient.Embed(ctx, s.embeddingModel, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.index.SearchNearest(ctx, pgvector.NewVector(embedding), k)
}

// rerank pide al LLM ordenar el pool recuperado segun los scores numericos de
// personalidad. Falla de parseo -> ranking fallback en orden de retrieval;
// falla del LLM -> primeros `limit` resultados crudos, marcados como
// degradados para que no terminen en el cache.
func (s *AssistantService) rerank(ctx context.Context, query string, retrieved []domain.RetrievedCandidate, limit int) ([]domain.RankedCandidate, bool) {
	prompt := s.buildRerankPrompt(query, retrieved, limit)
	messages := []llm.Message{{Role: "user", Content: prompt}}

	content, err := completeWithRetry(ctx, s.llmClient, s.limiter, s.logger, s.chatModel, messages, 0.1, 1000)
	if err != nil {
		s.logger.Error("llm rerank failed, returning raw retrieval results", zap.Error(err))
		return truncateRaw(retrieved, limit), true
	}

	analysis, ok := parseRerankResponse(content)
	if !ok {
		s.logger.Warn("could not parse rerank response, using fallback ranking")
		return fallbackRanking(retrieved, limit), false
	}

	ranked := make([]domain.RankedCandidate, 0, limit)
	for _, rc := range analysis.RankedCandidates {
		match, ok := matchCandidate(retrieved, rc)
		if !ok {
			s.logger.Warn("reranked candidate not found in retrieval pool",
				zap.String("candidate_id", rc.CandidateID),
				zap.String("name", rc.Name),
			)
			continue
		}
		keyTraits := rc.KeyTraits
		if keyTraits == nil {
			keyTraits = []string{}
		}
		ranked = append(ranked, domain.RankedCandidate{
			RetrievedCandidate: match,
			LLMRank:            rc.Rank,
			RelevanceReasoning: rc.RelevanceReasoning,
			KeyTraits:          keyTraits,
		})
	}
	if len(ranked) == 0 {
		return fallbackRanking(retrieved, limit), false
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, false
}

type rerankAnalysis struct {
	Analysis         string              `json:"analysis"`
	RankedCandidates []rerankedCandidate `json:"ranked_candidates"`
}

type rerankedCandidate struct {
	CandidateID        string   `json:"candidate_id"`
	Name               string   `json:"name"`
	Rank               int      `json:"rank"`
	RelevanceReasoning string   `json:"relevance_reasoning"`
	KeyTraits          []string `json:"key_traits"`
}

func parseRerankResponse(content string) (rerankAnalysis, bool) {
	cleaned := cleanLLMJSONResponse(content)
	obj := extractFirstJSONObject(cleaned)
	if obj == "" {
		obj = extractFirstJSONObject(content)
	}
	if obj == "" {
		return rerankAnalysis{}, false
	}

	var analysis rerankAnalysis
	if err := json.Unmarshal([]byte(obj), &analysis); err != nil {
		return rerankAnalysis{}, false
	}
	if len(analysis.RankedCandidates) == 0 {
		return rerankAnalysis{}, false
	}
	return analysis, true
}

// matchCandidate resuelve la entrada del ranking contra el pool recuperado,
// por candidate_id estable; el match por nombre queda solo como fallback para
// respuestas que no lo devuelven.
func matchCandidate(retrieved []domain.RetrievedCandidate, rc rerankedCandidate) (domain.RetrievedCandidate, bool) {
	if rc.CandidateID != "" {
		for _, c := range retrieved {
			if c.CandidateID == rc.CandidateID {
				return c, true
			}
		}
	}
	for _, c := range retrieved {
		if c.Name == rc.Name {
			return c, true
		}
	}
	return domain.RetrievedCandidate{}, false
}

func fallbackRanking(retrieved []domain.RetrievedCandidate, limit int) []domain.RankedCandidate {
	if len(retrieved) > limit {
		retrieved = retrieved[:limit]
	}
	ranked := make([]domain.RankedCandidate, 0, len(retrieved))
	for i, c := range retrieved {
		ranked = append(ranked, domain.RankedCandidate{
			RetrievedCandidate: c,
			LLMRank:            i + 1,
			RelevanceReasoning: "Selected based on vector similarity and compatibility score",
			KeyTraits:          []string{},
		})
	}
	return ranked
}

func truncateRaw(retrieved []domain.RetrievedCandidate, limit int) []domain.RankedCandidate {
	if len(retrieved) > limit {
		retrieved = retrieved[:limit]
	}
	ranked := make([]domain.RankedCandidate, 0, len(retrieved))
	for _, c := range retrieved {
		ranked = append(ranked, domain.RankedCandidate{RetrievedCandidate: c})
	}
	return ranked
}

func (s *AssistantService) buildRerankPrompt(query string, retrieved []domain.RetrievedCandidate, limit int) string {
	var b strings.Builder
	for i, c := range retrieved {
		t := c.Traits
		fmt.Fprintf(&b, `
%d. %s (%s) [candidate_id: %s]
   - Personality Scores:
     * Extraversion: %.2f (outgoing, social, energetic)
     * Openness: %.2f (creative, innovative, adaptable)
     * Conscientiousness: %.2f (organized, reliable, detail-oriented)
     * Agreeableness: %.2f (collaborative, team-oriented, cooperative)
     * Neuroticism: %.2f (stress levels - lower is better)
   - Compatibility Score: %.2f
   - Recommendation: %s
   - Summary: %s
`, i+1, c.Name, c.Position, c.CandidateID,
			t.Extraversion, t.Openness, t.Conscientiousness, t.Agreeableness, t.Neuroticism,
			c.CompatibilityScore, c.Recommendation, truncate(c.Summary, 200))
	}

	return fmt.Sprintf(`You are an expert HR analyst tasked with ranking candidates based on a specific query.

Query: "%s"

Available Candidates:
%s

INSTRUCTIONS:
1. Analyze the query to understand what personality traits or characteristics are most relevant
2. Focus on the NUMERICAL personality scores, not just text descriptions
3. Rank candidates based on how well their actual personality scores match the query intent
4. Return EXACTLY the top %d candidates in order of relevance
5. For each candidate, provide a brief explanation of why they fit the query
6. Echo each candidate's candidate_id exactly as given

RESPONSE FORMAT (JSON):
{
  "analysis": "Brief explanation of how you interpreted the query and ranking criteria",
  "ranked_candidates": [
    {
      "candidate_id": "id from the list above",
      "name": "Candidate Name",
      "rank": 1,
      "relevance_reasoning": "Why this candidate fits the query based on personality scores",
      "key_traits": ["trait1", "trait2"]
    }
  ]
}

Focus on NUMERICAL personality trait scores over text descriptions. Be precise and data-driven in your analysis.`,
		query, b.String(), limit)
}

// BuildSearchableText sintetiza el texto indexable de una entrada: identidad,
// resumen, fortalezas, preocupaciones y frases descriptivas derivadas de los
// rasgos cuando superan los umbrales.
func BuildSearchableText(entry domain.CandidateIndexEntry) string {
	var descriptions []string
	t := entry.Traits
	if t.Openness > 0.7 {
		descriptions = append(descriptions, "highly open to new experiences, creative, innovative")
	}
	if t.Conscientiousness > 0.7 {
		descriptions = append(descriptions, "very organized, reliable, detail-oriented")
	}
	if t.Extraversion > 0.7 {
		descriptions = append(descriptions, "outgoing, social, energetic, great communicator")
	}
	if t.Agreeableness > 0.7 {
		descriptions = append(descriptions, "collaborative, team-oriented, cooperative")
	}
	if t.Neuroticism < 0.3 {
		descriptions = append(descriptions, "handles pressure well, emotionally stable, stress-resistant")
	}

	parts := []string{
		"Name: " + entry.Name,
		"Position: " + entry.Position,
		"Summary: " + entry.Summary,
		"Strengths: " + strings.Join(entry.Strengths, " "),
		"Concerns: " + strings.Join(entry.Concerns, " "),
		"Personality traits: " + strings.Join(descriptions, " "),
	}
	return strings.Join(parts, " ")
}

func (s *AssistantService) errorResponse(query, message string) domain.QueryResponse {
	return domain.QueryResponse{
		Query:        query,
		ResultsCount: 0,
		Candidates:   []domain.RankedCandidate{},
		Error:        message,
		Timestamp:    s.now().Format(time.RFC3339),
	}
}

// truncate corta en la ultima frontera de runa antes del limite en bytes,
// para nunca emitir UTF-8 invalido en un prompt.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
