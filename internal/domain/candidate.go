package domain

// Origen de los rasgos de un candidato: directos del input o inferidos por el LLM.
const (
	TraitSourceDirect    = "direct"
	TraitSourceExtracted = "extracted"
)

// InterviewResponse es un par pregunta/respuesta de la entrevista.
// Algunos inputs usan la clave "answer" y otros "response"; Text resuelve ambos.
type InterviewResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Response string `json:"response,omitempty"`
}

// Text devuelve la respuesta, prefiriendo "answer" sobre "response".
func (r InterviewResponse) Text() string {
	if r.Answer != "" {
		return r.Answer
	}
	return r.Response
}

// TeamMemberInput es la forma cruda de un miembro del equipo tal como llega en el request.
type TeamMemberInput struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Position          string             `json:"position"`
	Role              string             `json:"role"`
	BigFive           map[string]float64 `json:"big_five"`
	PersonalityTraits map[string]float64 `json:"personality_traits"`
}

// TeamInput es el roster crudo; acepta las claves "team" o "team_members".
type TeamInput struct {
	Team        []TeamMemberInput `json:"team"`
	TeamMembers []TeamMemberInput `json:"team_members"`
}

// Members devuelve el roster presente, sin distinguir bajo que clave llego.
func (t TeamInput) Members() []TeamMemberInput {
	if len(t.Team) > 0 {
		return t.Team
	}
	return t.TeamMembers
}

// TeamMember es un miembro del equipo ya resuelto, con vector de rasgos canonico.
type TeamMember struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Position string      `json:"position"`
	Traits   TraitVector `json:"traits"`
}

// CandidateInput es la forma cruda de un candidato: puede traer rasgos directos
// (big_five / personality_traits) o solo respuestas de entrevista.
type CandidateInput struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Position           string              `json:"position"`
	RoleApplied        string              `json:"role_applied"`
	BigFive            map[string]float64  `json:"big_five"`
	PersonalityTraits  map[string]float64  `json:"personality_traits"`
	Responses          []InterviewResponse `json:"responses"`
	InterviewResponses []InterviewResponse `json:"interview_responses"`
}

// DirectTraits devuelve el mapa de rasgos directos si existe, o nil si el
// candidato necesita extraccion via LLM.
func (c CandidateInput) DirectTraits() map[string]float64 {
	if len(c.BigFive) > 0 {
		return c.BigFive
	}
	if len(c.PersonalityTraits) > 0 {
		return c.PersonalityTraits
	}
	return nil
}

// AllResponses devuelve las respuestas de entrevista presentes bajo cualquiera
// de las dos claves aceptadas.
func (c CandidateInput) AllResponses() []InterviewResponse {
	if len(c.Responses) > 0 {
		return c.Responses
	}
	return c.InterviewResponses
}

// Candidate es un candidato resuelto: la union direct/extracted ya decidida
// durante la ingesta, con provenance en TraitSource.
type Candidate struct {
	ID                 string
	Name               string
	Position           string
	Traits             TraitVector
	TraitSource        string
	InterviewResponses []InterviewResponse
}
