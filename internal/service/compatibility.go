package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"teamfit/internal/domain"
	"teamfit/internal/llm"
)

const scorerSystemPrompt = `You are a world-class team compatibility analyst and organizational psychologist.
Provide thorough, nuanced, and actionable analysis based on personality psychology and team dynamics research.`

// Cuantos pares pregunta/respuesta se incluyen como contexto en el prompt.
const maxInterviewContext = 3

// CompatibilityScorer produce un juicio de compatibilidad estructurado entre
// un candidato y el equipo via LLM, validado y acotado antes de usarse. Ante
// cualquier falla devuelve el juicio fallback fijo (0.5/0.3), distinguible
// solo por su summary.
type CompatibilityScorer struct {
	llmClient llm.Client
	limiter   *RateLimiter
	model     string
	logger    *zap.Logger
}

func NewCompatibilityScorer(llmClient llm.Client, limiter *RateLimiter, model string, logger *zap.Logger) *CompatibilityScorer {
	return &CompatibilityScorer{
		llmClient: llmClient,
		limiter:   limiter,
		model:     model,
		logger:    logger,
	}
}

// Score evalua la compatibilidad del candidato con el equipo.
func (s *CompatibilityScorer) Score(ctx context.Context, team []domain.TeamMember, candidate domain.Candidate) domain.CompatibilityJudgment {
	prompt := s.buildPrompt(team, candidate)
	messages := []llm.Message{
		{Role: "system", Content: scorerSystemPrompt},
		{Role: "user", Content: prompt},
	}

	content, err := completeWithRetry(ctx, s.llmClient, s.limiter, s.logger, s.model, messages, 0.3, 2000)
	if err != nil {
		s.logger.Error("ai compatibility analysis failed", zap.Error(err), zap.String("candidate", candidate.Name))
		return fallbackJudgment()
	}

	cleaned := cleanLLMJSONResponse(content)
	if obj := extractFirstJSONObject(cleaned); obj != "" {
		cleaned = obj
	}

	// Los numericos van como punteros para distinguir claves ausentes de un
	// 0 explicito: un juicio sin score no es un juicio de score 0.
	var parsed struct {
		domain.CompatibilityJudgment
		CompatibilityScore *float64 `json:"compatibility_score"`
		ConfidenceLevel    *float64 `json:"confidence_level"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		s.logger.Error("parsing compatibility judgment failed", zap.Error(err), zap.String("candidate", candidate.Name))
		return fallbackJudgment()
	}

	judgment := parsed.CompatibilityJudgment
	judgment.CompatibilityScore = scoreOrDefault(parsed.CompatibilityScore)
	judgment.ConfidenceLevel = scoreOrDefault(parsed.ConfidenceLevel)
	return validateJudgment(judgment)
}

// scoreOrDefault reemplaza un numerico ausente por el punto medio 0.5.
func scoreOrDefault(v *float64) float64 {
	if v == nil {
		return 0.5
	}
	return *v
}

func (s *CompatibilityScorer) buildPrompt(team []domain.TeamMember, candidate domain.Candidate) string {
	var roster []string
	for _, member := range team {
		roster = append(roster, fmt.Sprintf("- %s (%s): %s", member.Name, member.Position, formatTraits(member.Traits)))
	}

	candidateSummary := fmt.Sprintf("%s (%s): %s", candidate.Name, candidate.Position, formatTraits(candidate.Traits))

	interviewContext := ""
	if len(candidate.InterviewResponses) > 0 {
		responses := candidate.InterviewResponses
		if len(responses) > maxInterviewContext {
			responses = responses[:maxInterviewContext]
		}
		var pairs []string
		for _, r := range responses {
			if r.Question != "" && r.Text() != "" {
				pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", r.Question, r.Text()))
			}
		}
		if len(pairs) > 0 {
			interviewContext = "\n\nKey Interview Responses:\n" + strings.Join(pairs, "\n\n")
		}
	}

	return fmt.Sprintf(`As an expert team dynamics consultant and organizational psychologist, analyze the compatibility between this candidate and the existing team.
Consider personality fit, collaboration potential, and team dynamics.
Provide a concise narrative-style summary of the candidate's overall soft skills and general personality.
Highlight key strengths and potential areas for development relevant to a team environment.
Also, identify any behavioral flags based on the conversation (e.g., "May avoid conflict", "Good under pressure").

CURRENT TEAM:
%s

CANDIDATE:
%s%s

ANALYSIS FRAMEWORK:
1. Personality Fit: How well do the candidate's traits complement the team?
2. Team Dynamics: Will this addition improve or challenge team cohesion?
3. Collaboration Style: How will the candidate work with existing members?
4. Growth Potential: What opportunities and risks does this hire present?
5. Cultural Integration: How well will the candidate adapt to team culture?

Provide a comprehensive analysis in JSON format with this exact structure:
{
    "compatibility_score": float,
    "confidence_level": float,
    "summary": "string",
    "strengths": ["string"],
    "concerns": ["string"],
    "recommendations": ["string"],
    "team_dynamics_impact": {
        "likely_role": "string",
        "collaboration_style": "string",
        "influence_on_team": "string"
    },
    "development_opportunities": ["string"],
    "risk_factors": ["string"]
}

Be specific, actionable, and balanced in your assessment. Consider the personality traits and qualitative aspects of team fit.`,
		strings.Join(roster, "\n"), candidateSummary, interviewContext)
}

func formatTraits(traits domain.TraitVector) string {
	var parts []string
	for _, name := range domain.TraitNames {
		title := strings.ToUpper(name[:1]) + name[1:]
		parts = append(parts, fmt.Sprintf("%s: %.2f", title, traits.Get(name)))
	}
	return strings.Join(parts, ", ")
}

// validateJudgment acota los numericos a [0,1] y reemplaza campos faltantes
// por placeholders documentados, para que los consumidores nunca vean null.
func validateJudgment(j domain.CompatibilityJudgment) domain.CompatibilityJudgment {
	j.CompatibilityScore = clamp01(j.CompatibilityScore)
	j.ConfidenceLevel = clamp01(j.ConfidenceLevel)
	if j.Summary == "" {
		j.Summary = "Analysis unavailable"
	}
	if j.Strengths == nil {
		j.Strengths = []string{"Analysis pending"}
	}
	if j.Concerns == nil {
		j.Concerns = []string{"Further evaluation needed"}
	}
	if j.Recommendations == nil {
		j.Recommendations = []string{"Conduct additional assessment"}
	}
	if j.DevelopmentOpportunities == nil {
		j.DevelopmentOpportunities = []string{}
	}
	if j.RiskFactors == nil {
		j.RiskFactors = []string{}
	}
	return j
}

// fallbackJudgment es la senal fija de "no se pudo evaluar": score 0.5 con
// confianza baja 0.3. Distinguible de un juicio neutro genuino solo por el summary.
func fallbackJudgment() domain.CompatibilityJudgment {
	return domain.CompatibilityJudgment{
		CompatibilityScore:       0.5,
		ConfidenceLevel:          0.3,
		Summary:                  "AI analysis unavailable",
		Strengths:                []string{"Fallback analysis"},
		Concerns:                 []string{"AI analysis unavailable"},
		Recommendations:          []string{"Conduct follow-up interviews", "Consider team integration plan"},
		TeamDynamicsImpact:       domain.TeamDynamicsImpact{},
		DevelopmentOpportunities: []string{},
		RiskFactors:              []string{},
	}
}
