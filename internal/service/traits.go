package service

import (
	"strings"

	"go.uber.org/zap"

	"teamfit/internal/domain"
)

// NormalizeTraitKeys pasa las claves de un mapa de rasgos a minusculas y
// descarta las que no son uno de los cinco nombres canonicos. No completa
// claves faltantes: eso ocurre recien en la validacion.
func NormalizeTraitKeys(traits map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(traits))
	for key, value := range traits {
		lower := strings.ToLower(key)
		for _, name := range domain.TraitNames {
			if lower == name {
				normalized[lower] = value
				break
			}
		}
	}
	return normalized
}

// ValidateTraits convierte un mapa de rasgos (ya normalizado) en un vector
// canonico: claves faltantes toman 0.5 y valores fuera de [0,1] se acotan.
func ValidateTraits(traits map[string]float64, logger *zap.Logger) domain.TraitVector {
	vector := domain.NeutralTraits()
	for _, name := range domain.TraitNames {
		value, ok := traits[name]
		if !ok {
			if logger != nil {
				logger.Warn("missing trait, using default", zap.String("trait", name))
			}
			continue
		}
		vector.Set(name, clamp01(value))
	}
	return vector
}

// ValidateRawTraits valida la salida cruda del LLM: cada clave requerida se
// evalua de forma independiente y valores no numericos o fuera de rango se
// reemplazan por 0.5 (se loguea, no se propaga).
func ValidateRawTraits(raw map[string]interface{}, logger *zap.Logger) domain.TraitVector {
	lowered := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		lowered[strings.ToLower(key)] = value
	}

	vector := domain.NeutralTraits()
	for _, name := range domain.TraitNames {
		value, ok := lowered[name]
		if !ok {
			if logger != nil {
				logger.Warn("missing trait in llm output, using default", zap.String("trait", name))
			}
			continue
		}
		num, ok := value.(float64)
		if !ok {
			if logger != nil {
				logger.Warn("invalid trait value, using default", zap.String("trait", name), zap.Any("value", value))
			}
			continue
		}
		vector.Set(name, clamp01(num))
	}
	return vector
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
