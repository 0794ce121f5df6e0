package service

import (
	"testing"

	"teamfit/internal/domain"
)

func analysisWithScore(name string, score float64) domain.CandidateAnalysis {
	return domain.CandidateAnalysis{
		CandidateInfo: domain.CandidateInfo{Name: name},
		AIAnalysis:    domain.CompatibilityJudgment{CompatibilityScore: score},
		OverallRecommendation: domain.Recommendation{
			Status: domain.RecommendationConditional,
		},
	}
}

func TestGenerateTeamInsights_EmptyPool(t *testing.T) {
	insights := GenerateTeamInsights(nil)
	if insights.CandidatePoolSummary != nil {
		t.Fatalf("expected no pool summary for empty pool, got %+v", insights.CandidatePoolSummary)
	}
	if len(insights.TopCandidates) != 0 {
		t.Fatalf("expected no top candidates, got %v", insights.TopCandidates)
	}
}

func TestGenerateTeamInsights_Aggregates(t *testing.T) {
	insights := GenerateTeamInsights([]domain.CandidateAnalysis{
		analysisWithScore("Ana", 0.9),
		analysisWithScore("Bruno", 0.5),
		analysisWithScore("Carla", 0.7),
		analysisWithScore("Diego", 0.3),
	})

	summary := insights.CandidatePoolSummary
	if summary == nil {
		t.Fatalf("expected pool summary")
	}
	if summary.AverageCompatibility != 0.6 {
		t.Fatalf("expected average 0.6, got %v", summary.AverageCompatibility)
	}
	if summary.BestCompatibility != 0.9 {
		t.Fatalf("expected best 0.9, got %v", summary.BestCompatibility)
	}
	if summary.CompatibilityRange != 0.6 {
		t.Fatalf("expected range 0.6, got %v", summary.CompatibilityRange)
	}
	if summary.CandidatesAboveThreshold != 2 {
		t.Fatalf("expected 2 candidates at or above 0.7, got %d", summary.CandidatesAboveThreshold)
	}

	if len(insights.TopCandidates) != 3 {
		t.Fatalf("expected top 3, got %d", len(insights.TopCandidates))
	}
	if insights.TopCandidates[0].Name != "Ana" || insights.TopCandidates[1].Name != "Carla" || insights.TopCandidates[2].Name != "Bruno" {
		t.Fatalf("unexpected top order: %+v", insights.TopCandidates)
	}
}

func TestGenerateTeamInsights_TiesKeepInputOrder(t *testing.T) {
	insights := GenerateTeamInsights([]domain.CandidateAnalysis{
		analysisWithScore("primero", 0.8),
		analysisWithScore("segundo", 0.8),
		analysisWithScore("tercero", 0.8),
		analysisWithScore("cuarto", 0.8),
	})

	top := insights.TopCandidates
	if len(top) != 3 {
		t.Fatalf("expected top 3, got %d", len(top))
	}
	if top[0].Name != "primero" || top[1].Name != "segundo" || top[2].Name != "tercero" {
		t.Fatalf("expected stable order on ties, got %+v", top)
	}
}
