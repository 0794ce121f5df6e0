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

const extractorSystemPrompt = `You are a highly skilled organizational psychologist analyzing a candidate's interview transcript. Your task is to infer the candidate's Big Five personality traits (Openness to Experience, Conscientiousness, Extraversion, Agreeableness, Neuroticism/Emotional Stability) based solely on their spoken responses.`

// PersonalityTraitsExtractor infiere rasgos Big Five desde respuestas de
// entrevista via LLM. Una falla de extraccion nunca es fatal para el pipeline:
// cualquier error termina en el vector neutro por defecto.
type PersonalityTraitsExtractor struct {
	llmClient llm.Client
	limiter   *RateLimiter
	model     string
	logger    *zap.Logger
}

func NewPersonalityTraitsExtractor(llmClient llm.Client, limiter *RateLimiter, model string, logger *zap.Logger) *PersonalityTraitsExtractor {
	return &PersonalityTraitsExtractor{
		llmClient: llmClient,
		limiter:   limiter,
		model:     model,
		logger:    logger,
	}
}

// ExtractFromResponses devuelve el vector de rasgos inferido de las respuestas
// de entrevista del candidato. Sin respuestas devuelve el vector neutro sin
// llamar al LLM.
func (e *PersonalityTraitsExtractor) ExtractFromResponses(ctx context.Context, candidate domain.CandidateInput) domain.TraitVector {
	responses := candidate.AllResponses()
	if len(responses) == 0 {
		e.logger.Warn("no interview responses found for candidate", zap.String("candidate", candidate.Name))
		return domain.NeutralTraits()
	}

	prompt := e.buildPrompt(responses)
	messages := []llm.Message{
		{Role: "system", Content: extractorSystemPrompt},
		{Role: "user", Content: prompt},
	}

	content, err := completeWithRetry(ctx, e.llmClient, e.limiter, e.logger, e.model, messages, 0.1, 0)
	if err != nil {
		e.logger.Error("extracting personality traits failed", zap.Error(err), zap.String("candidate", candidate.Name))
		return domain.NeutralTraits()
	}

	cleaned := cleanLLMJSONResponse(content)
	if obj := extractFirstJSONObject(cleaned); obj != "" {
		cleaned = obj
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		e.logger.Error("parsing extracted traits failed", zap.Error(err), zap.String("candidate", candidate.Name))
		return domain.NeutralTraits()
	}

	return ValidateRawTraits(raw, e.logger)
}

func (e *PersonalityTraitsExtractor) buildPrompt(responses []domain.InterviewResponse) string {
	var pairs []string
	for _, r := range responses {
		pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", r.Question, r.Text()))
	}
	combined := strings.Join(pairs, "\n\n")

	return fmt.Sprintf(`Analyze the following interview responses and extract Big Five personality traits.
Provide scores between 0.0 and 1.0 for each trait based on the responses.

Interview Responses:
%s

Big Five Personality Traits to assess:
- Openness: Willingness to experience new things, creativity, intellectual curiosity
- Conscientiousness: Organization, responsibility, dependability, persistence
- Extraversion: Sociability, assertiveness, energy level, tendency to seek stimulation
- Agreeableness: Cooperation, trust, empathy, concern for others
- Neuroticism: Emotional instability, anxiety, moodiness (higher = more neurotic)

Respond ONLY with a valid JSON object in this exact format:
{
    "openness": 0.75,
    "conscientiousness": 0.85,
    "extraversion": 0.60,
    "agreeableness": 0.80,
    "neuroticism": 0.30
}`, combined)
}
