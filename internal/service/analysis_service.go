package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamfit/internal/domain"
)

const (
	analyzerVersion = "3.0"
	analysisType    = "ai_only"
)

// ErrNoTeamMembers se devuelve cuando el roster no trae miembros con rasgos validos.
var ErrNoTeamMembers = errors.New("no team members with valid personality traits found")

// ErrNoCandidates se devuelve cuando el request no trae candidatos.
var ErrNoCandidates = errors.New("no candidates found in candidates data")

// AnalysisService orquesta el analisis de compatibilidad: resuelve el roster y
// los candidatos (union direct/extracted decidida una sola vez en la ingesta),
// evalua cada candidato en secuencia a traves del rate limiter compartido y
// arma el AnalysisResult completo.
type AnalysisService struct {
	scorer    *CompatibilityScorer
	extractor *PersonalityTraitsExtractor
	limiter   *RateLimiter
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewAnalysisService(
	scorer *CompatibilityScorer,
	extractor *PersonalityTraitsExtractor,
	limiter *RateLimiter,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		scorer:    scorer,
		extractor: extractor,
		limiter:   limiter,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithClock reemplaza el reloj del servicio; pensado para tests deterministas.
func (s *AnalysisService) WithClock(now func() time.Time) *AnalysisService {
	s.now = now
	return s
}

// WithIDGenerator reemplaza el generador de ids de corrida; pensado para tests.
func (s *AnalysisService) WithIDGenerator(newID func() string) *AnalysisService {
	s.newID = newID
	return s
}

// Analyze ejecuta el analisis completo equipo vs candidatos.
func (s *AnalysisService) Analyze(ctx context.Context, teamData domain.TeamInput, candidatesData []domain.CandidateInput) (*domain.AnalysisResult, error) {
	start := s.now()

	team, err := s.processTeam(teamData)
	if err != nil {
		return nil, err
	}
	candidates, err := s.resolveCandidates(ctx, candidatesData)
	if err != nil {
		return nil, err
	}
	s.logger.Info("processing analysis",
		zap.Int("team_members", len(team)),
		zap.Int("candidates", len(candidates)),
	)

	extracted := 0
	for _, c := range candidates {
		if c.TraitSource == domain.TraitSourceExtracted {
			extracted++
		}
	}
	apiCalls := extracted + len(candidates)
	if estimated := time.Duration(apiCalls) * s.limiter.MinInterval(); estimated > 10*time.Second {
		s.logger.Info("long analysis expected due to rate limiting", zap.Duration("estimated", estimated))
	}

	analyses := make([]domain.CandidateAnalysis, 0, len(candidates))
	for i, candidate := range candidates {
		s.logger.Info("ai analysis for candidate",
			zap.Int("current", i+1),
			zap.Int("total", len(candidates)),
			zap.String("name", candidate.Name),
		)

		judgment := s.scorer.Score(ctx, team, candidate)
		analyses = append(analyses, domain.CandidateAnalysis{
			CandidateInfo: domain.CandidateInfo{
				ID:                candidate.ID,
				Name:              candidate.Name,
				Position:          candidate.Position,
				TraitsSource:      candidate.TraitSource,
				PersonalityTraits: roundTraits(candidate.Traits, round3),
			},
			AIAnalysis:            judgment,
			OverallRecommendation: DeriveRecommendation(judgment.CompatibilityScore, judgment.ConfidenceLevel),
		})
	}

	result := &domain.AnalysisResult{
		AnalysisMetadata: domain.AnalysisMetadata{
			AnalysisID:      s.newID(),
			Timestamp:       start.Format(time.RFC3339),
			TeamSize:        len(team),
			CandidatesCount: len(candidates),
			AnalyzerVersion: analyzerVersion,
			AnalysisType:    analysisType,
			RateLimitInfo: domain.RateLimitInfo{
				RequestsPerSecond: s.limiter.RequestsPerSecond(),
				EstimatedAPICalls: apiCalls,
			},
			RateLimiterStats:  s.limiter.Stats(),
			TotalAnalysisTime: round2(s.now().Sub(start).Seconds()),
		},
		TeamSummary:        teamSummary(team),
		CandidatesAnalysis: analyses,
		TeamInsights:       GenerateTeamInsights(analyses),
	}

	return result, nil
}

// processTeam resuelve el roster crudo en miembros con vector canonico.
// Miembros sin rasgos se loguean y se omiten.
func (s *AnalysisService) processTeam(teamData domain.TeamInput) ([]domain.TeamMember, error) {
	members := teamData.Members()
	if len(members) == 0 {
		return nil, fmt.Errorf("no team members found in team data")
	}

	var team []domain.TeamMember
	for _, m := range members {
		traits := m.BigFive
		if len(traits) == 0 {
			traits = m.PersonalityTraits
		}
		if len(traits) == 0 {
			s.logger.Warn("no personality traits found for team member", zap.String("name", m.Name))
			continue
		}

		position := m.Position
		if position == "" {
			position = m.Role
		}
		team = append(team, domain.TeamMember{
			ID:       defaultStr(m.ID, "unknown"),
			Name:     defaultStr(m.Name, "Unknown"),
			Position: defaultStr(position, "Unknown"),
			Traits:   ValidateTraits(NormalizeTraitKeys(traits), s.logger),
		})
	}

	if len(team) == 0 {
		return nil, ErrNoTeamMembers
	}
	return team, nil
}

// resolveCandidates decide una sola vez, por candidato, si los rasgos vienen
// directos del input o se extraen del transcript via LLM.
func (s *AnalysisService) resolveCandidates(ctx context.Context, inputs []domain.CandidateInput) ([]domain.Candidate, error) {
	if len(inputs) == 0 {
		return nil, ErrNoCandidates
	}

	var direct, needExtraction []domain.Candidate
	var pending []domain.CandidateInput

	for _, in := range inputs {
		position := in.Position
		if position == "" {
			position = in.RoleApplied
		}
		candidate := domain.Candidate{
			ID:                 defaultStr(in.ID, "unknown"),
			Name:               defaultStr(in.Name, "Unknown"),
			Position:           defaultStr(position, "Unknown"),
			InterviewResponses: in.AllResponses(),
		}

		if traits := in.DirectTraits(); traits != nil {
			candidate.Traits = ValidateTraits(NormalizeTraitKeys(traits), s.logger)
			candidate.TraitSource = domain.TraitSourceDirect
			direct = append(direct, candidate)
			continue
		}

		candidate.TraitSource = domain.TraitSourceExtracted
		needExtraction = append(needExtraction, candidate)
		pending = append(pending, in)
	}

	if len(needExtraction) > 0 {
		s.logger.Info("extracting personality traits for candidates",
			zap.Int("count", len(needExtraction)),
		)
		for i := range needExtraction {
			s.logger.Info("processing candidate for extraction",
				zap.Int("current", i+1),
				zap.Int("total", len(needExtraction)),
				zap.String("name", needExtraction[i].Name),
			)
			needExtraction[i].Traits = s.extractor.ExtractFromResponses(ctx, pending[i])
		}
	}

	return append(direct, needExtraction...), nil
}

func teamSummary(team []domain.TeamMember) domain.TeamSummary {
	members := make([]domain.TeamSummaryMember, 0, len(team))
	for _, m := range team {
		members = append(members, domain.TeamSummaryMember{
			Name:          m.Name,
			Position:      m.Position,
			TraitsSummary: roundTraits(m.Traits, round2),
		})
	}
	return domain.TeamSummary{Members: members}
}

func roundTraits(traits domain.TraitVector, round func(float64) float64) map[string]float64 {
	rounded := make(map[string]float64, len(domain.TraitNames))
	for _, name := range domain.TraitNames {
		rounded[name] = round(traits.Get(name))
	}
	return rounded
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
