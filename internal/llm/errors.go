package llm

import (
	"errors"
	"strings"
)

// ErrorKind clasifica errores del proveedor en un set cerrado, para que la
// logica de retry no dependa de inspeccionar strings en el core.
type ErrorKind int

const (
	// KindFatal: auth, request invalido o fallas de red; no se reintentan.
	KindFatal ErrorKind = iota
	// KindTransient: rate limit / too many requests; candidato a retry con backoff.
	KindTransient
	// KindMalformed: el proveedor respondio pero el contenido no es usable.
	KindMalformed
)

// ProviderError envuelve un error del proveedor con su clasificacion.
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Classify devuelve la clase de un error. Errores ajenos al adapter se tratan
// como fatales, salvo que el mensaje tenga forma de rate limit (proveedores
// que no exponen status code).
func Classify(err error) ErrorKind {
	if err == nil {
		return KindFatal
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if isRateLimitMessage(err.Error()) {
		return KindTransient
	}
	return KindFatal
}

func isRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests")
}

func classifyStatus(status int, message string) *ProviderError {
	kind := KindFatal
	if status == 429 || isRateLimitMessage(message) {
		kind = KindTransient
	}
	return &ProviderError{Kind: kind, StatusCode: status, Message: message}
}
