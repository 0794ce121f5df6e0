package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"teamfit/internal/domain"
)

// ErrResultNotFound indica que no hay un analisis guardado en la ruta esperada.
var ErrResultNotFound = errors.New("analysis result file not found")

// ResultStore persiste el AnalysisResult como documento JSON, la fuente de
// verdad que luego se indexa para RAG.
type ResultStore struct {
	path   string
	logger *zap.Logger
}

func NewResultStore(path string, logger *zap.Logger) *ResultStore {
	return &ResultStore{path: path, logger: logger}
}

// Path devuelve la ruta del archivo de resultados.
func (s *ResultStore) Path() string {
	return s.path
}

// Save escribe el resultado con formato legible.
func (s *ResultStore) Save(result *domain.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write analysis result: %w", err)
	}

	s.logger.Info("results saved", zap.String("path", s.path))
	return nil
}

// Load lee el ultimo resultado guardado. Devuelve ErrResultNotFound si no existe.
func (s *ResultStore) Load() (*domain.AnalysisResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, s.path)
		}
		return nil, fmt.Errorf("read analysis result: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse analysis result %s: %w", s.path, err)
	}
	return &result, nil
}
