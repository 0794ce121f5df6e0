package service

import "teamfit/internal/domain"

// DeriveRecommendation mapea (score, confidence) a la recomendacion categorica.
// Funcion pura y determinista: los umbrales se evaluan en orden y gana el
// primero que matchea; combined_score es el score redondeado a 3 decimales,
// sin mezclar la confianza en el valor.
func DeriveRecommendation(score, confidence float64) domain.Recommendation {
	var status, reasoning string
	switch {
	case score >= 0.8 && confidence >= 0.7:
		status = domain.RecommendationHighly
		reasoning = "Strong compatibility across multiple assessment dimensions."
	case score >= 0.7 && confidence >= 0.6:
		status = domain.RecommendationRecommended
		reasoning = "Good compatibility with positive indicators for team fit."
	case score >= 0.6:
		status = domain.RecommendationConditional
		reasoning = "Moderate compatibility - recommend additional evaluation or targeted team integration."
	case score >= 0.4:
		status = domain.RecommendationCautious
		reasoning = "Lower compatibility scores suggest careful consideration needed."
	default:
		status = domain.RecommendationNotRecommended
		reasoning = "Significant compatibility concerns across multiple dimensions."
	}

	return domain.Recommendation{
		Status:          status,
		CombinedScore:   round3(score),
		Reasoning:       reasoning,
		ConfidenceLevel: round3(confidence),
	}
}
