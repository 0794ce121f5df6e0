package domain

// Estados posibles de la recomendacion categorica.
const (
	RecommendationHighly         = "HIGHLY RECOMMENDED"
	RecommendationRecommended    = "RECOMMENDED"
	RecommendationConditional    = "CONDITIONAL"
	RecommendationCautious       = "CAUTIOUS"
	RecommendationNotRecommended = "NOT RECOMMENDED"
)

// TeamDynamicsImpact describe el efecto esperado del candidato sobre la dinamica del equipo.
type TeamDynamicsImpact struct {
	LikelyRole         string `json:"likely_role,omitempty"`
	CollaborationStyle string `json:"collaboration_style,omitempty"`
	InfluenceOnTeam    string `json:"influence_on_team,omitempty"`
}

// CompatibilityJudgment es la evaluacion estructurada devuelta por el LLM,
// siempre validada y acotada antes de usarse.
type CompatibilityJudgment struct {
	CompatibilityScore       float64            `json:"compatibility_score"`
	ConfidenceLevel          float64            `json:"confidence_level"`
	Summary                  string             `json:"summary"`
	Strengths                []string           `json:"strengths"`
	Concerns                 []string           `json:"concerns"`
	Recommendations          []string           `json:"recommendations"`
	TeamDynamicsImpact       TeamDynamicsImpact `json:"team_dynamics_impact"`
	DevelopmentOpportunities []string           `json:"development_opportunities"`
	RiskFactors              []string           `json:"risk_factors"`
}

// Recommendation es la recomendacion categorica derivada de forma determinista
// a partir de (compatibility_score, confidence_level).
type Recommendation struct {
	Status          string  `json:"status"`
	CombinedScore   float64 `json:"combined_score"`
	Reasoning       string  `json:"reasoning"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// CandidateInfo es el bloque de identidad y provenance de un candidato en el resultado.
type CandidateInfo struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Position          string             `json:"position"`
	TraitsSource      string             `json:"traits_source"`
	PersonalityTraits map[string]float64 `json:"personality_traits"`
}

// CandidateAnalysis agrupa candidato, juicio del LLM y recomendacion derivada.
type CandidateAnalysis struct {
	CandidateInfo         CandidateInfo         `json:"candidate_info"`
	AIAnalysis            CompatibilityJudgment `json:"ai_analysis"`
	OverallRecommendation Recommendation        `json:"overall_recommendation"`
}

// RateLimitInfo resume la configuracion de rate limiting usada en la corrida.
type RateLimitInfo struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	EstimatedAPICalls int     `json:"estimated_api_calls"`
}

// RateLimiterStats son las estadisticas best-effort del rate limiter.
type RateLimiterStats struct {
	TotalRequests          int     `json:"total_requests"`
	RequestsPerSecondLimit float64 `json:"requests_per_second_limit"`
	TotalWaitTime          float64 `json:"total_wait_time"`
}

// AnalysisMetadata describe la corrida: tamanos, version y costos de API.
type AnalysisMetadata struct {
	AnalysisID        string           `json:"analysis_id"`
	Timestamp         string           `json:"timestamp"`
	TeamSize          int              `json:"team_size"`
	CandidatesCount   int              `json:"candidates_count"`
	AnalyzerVersion   string           `json:"analyzer_version"`
	AnalysisType      string           `json:"analysis_type"`
	RateLimitInfo     RateLimitInfo    `json:"rate_limit_info"`
	RateLimiterStats  RateLimiterStats `json:"rate_limiter_stats"`
	TotalAnalysisTime float64          `json:"total_analysis_time"`
}

// TeamSummaryMember es la vista resumida de un miembro del equipo en el resultado.
type TeamSummaryMember struct {
	Name          string             `json:"name"`
	Position      string             `json:"position"`
	TraitsSummary map[string]float64 `json:"traits_summary"`
}

// TeamSummary agrupa el roster resumido.
type TeamSummary struct {
	Members []TeamSummaryMember `json:"members"`
}

// CandidatePoolSummary son los agregados del pool de candidatos.
type CandidatePoolSummary struct {
	AverageCompatibility     float64 `json:"average_compatibility"`
	BestCompatibility        float64 `json:"best_compatibility"`
	CompatibilityRange       float64 `json:"compatibility_range"`
	CandidatesAboveThreshold int     `json:"candidates_above_threshold"`
}

// TopCandidate es una entrada del ranking top-N del pool.
type TopCandidate struct {
	Name           string  `json:"name"`
	Compatibility  float64 `json:"compatibility"`
	Recommendation string  `json:"recommendation"`
}

// TeamInsights reduce los juicios por candidato a estadisticas de pool y un top 3.
type TeamInsights struct {
	CandidatePoolSummary *CandidatePoolSummary `json:"candidate_pool_summary,omitempty"`
	TopCandidates        []TopCandidate        `json:"top_candidates,omitempty"`
}

// AnalysisResult es la unidad persistida y luego indexada para RAG.
type AnalysisResult struct {
	AnalysisMetadata   AnalysisMetadata    `json:"analysis_metadata"`
	TeamSummary        TeamSummary         `json:"team_summary"`
	CandidatesAnalysis []CandidateAnalysis `json:"candidates_analysis"`
	TeamInsights       TeamInsights        `json:"team_insights"`
}
