package service

import (
	"math"
	"sort"

	"teamfit/internal/domain"
)

// Umbral de "candidato fuerte" para los agregados del pool.
const poolThreshold = 0.7

// GenerateTeamInsights reduce los juicios por candidato a estadisticas de pool
// y un top 3 por score descendente (empates conservan el orden de entrada).
// Con lista vacia devuelve la estructura vacia, sin error.
func GenerateTeamInsights(analyses []domain.CandidateAnalysis) domain.TeamInsights {
	if len(analyses) == 0 {
		return domain.TeamInsights{}
	}

	scores := make([]float64, 0, len(analyses))
	for _, a := range analyses {
		scores = append(scores, a.AIAnalysis.CompatibilityScore)
	}

	sum, best, worst := 0.0, scores[0], scores[0]
	above := 0
	for _, s := range scores {
		sum += s
		if s > best {
			best = s
		}
		if s < worst {
			worst = s
		}
		if s >= poolThreshold {
			above++
		}
	}

	top := make([]domain.TopCandidate, 0, len(analyses))
	for _, a := range analyses {
		top = append(top, domain.TopCandidate{
			Name:           a.CandidateInfo.Name,
			Compatibility:  a.AIAnalysis.CompatibilityScore,
			Recommendation: a.OverallRecommendation.Status,
		})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Compatibility > top[j].Compatibility
	})
	if len(top) > 3 {
		top = top[:3]
	}

	return domain.TeamInsights{
		CandidatePoolSummary: &domain.CandidatePoolSummary{
			AverageCompatibility:     round3(sum / float64(len(scores))),
			BestCompatibility:        round3(best),
			CompatibilityRange:       round3(best - worst),
			CandidatesAboveThreshold: above,
		},
		TopCandidates: top,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
