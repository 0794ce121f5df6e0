package domain

// Nombres canonicos de los cinco rasgos Big Five, en minusculas.
const (
	TraitOpenness          = "openness"
	TraitConscientiousness = "conscientiousness"
	TraitExtraversion      = "extraversion"
	TraitAgreeableness     = "agreeableness"
	TraitNeuroticism       = "neuroticism"
)

// TraitNames lista los cinco rasgos en orden canonico.
var TraitNames = []string{
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitNeuroticism,
}

// TraitVector es el vector Big Five normalizado: siempre cinco valores en [0,1].
type TraitVector struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// Get devuelve el valor de un rasgo por nombre canonico.
func (v TraitVector) Get(name string) float64 {
	switch name {
	case TraitOpenness:
		return v.Openness
	case TraitConscientiousness:
		return v.Conscientiousness
	case TraitExtraversion:
		return v.Extraversion
	case TraitAgreeableness:
		return v.Agreeableness
	case TraitNeuroticism:
		return v.Neuroticism
	}
	return 0
}

// Set asigna el valor de un rasgo por nombre canonico. Nombres desconocidos se ignoran.
func (v *TraitVector) Set(name string, value float64) {
	switch name {
	case TraitOpenness:
		v.Openness = value
	case TraitConscientiousness:
		v.Conscientiousness = value
	case TraitExtraversion:
		v.Extraversion = value
	case TraitAgreeableness:
		v.Agreeableness = value
	case TraitNeuroticism:
		v.Neuroticism = value
	}
}

// Map devuelve el vector como mapa con claves canonicas.
func (v TraitVector) Map() map[string]float64 {
	return map[string]float64{
		TraitOpenness:          v.Openness,
		TraitConscientiousness: v.Conscientiousness,
		TraitExtraversion:      v.Extraversion,
		TraitAgreeableness:     v.Agreeableness,
		TraitNeuroticism:       v.Neuroticism,
	}
}

// NeutralTraits devuelve el vector neutro usado como fallback (todos los rasgos en 0.5).
func NeutralTraits() TraitVector {
	return TraitVector{
		Openness:          0.5,
		Conscientiousness: 0.5,
		Extraversion:      0.5,
		Agreeableness:     0.5,
		Neuroticism:       0.5,
	}
}
