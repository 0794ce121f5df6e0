package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"teamfit/internal/config"
	"teamfit/internal/db"
	"teamfit/internal/domain"
	"teamfit/internal/llm"
	"teamfit/internal/repository"
	"teamfit/internal/service"
)

// Corrida batch: equipo y candidatos desde archivos JSON, resultados a disco y
// sync opcional del indice.
var (
	teamFile       string
	candidatesGlob string
	outputFile     string
	syncIndex      bool
	rps            float64

	rootCmd = &cobra.Command{
		Use:   "analyze",
		Short: "analyze runs a team compatibility analysis from JSON files",
		RunE:  run,
	}
)

func init() {
	rootCmd.Flags().StringVar(&teamFile, "team", "data/team.json", "path to the team roster JSON file")
	rootCmd.Flags().StringVar(&candidatesGlob, "candidates", "data/candidates/*.json", "glob of candidate JSON files")
	rootCmd.Flags().StringVar(&outputFile, "output", "", "results file (default: COMPATIBILITY_SCORES_FILE)")
	rootCmd.Flags().BoolVar(&syncIndex, "sync", false, "sync the candidate index after the analysis")
	rootCmd.Flags().Float64Var(&rps, "rps", 0, "override LLM requests per second")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if rps > 0 {
		cfg.RequestsPerSecond = rps
	}
	if outputFile == "" {
		outputFile = cfg.ResultsFile
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	teamData, err := loadTeam(teamFile)
	if err != nil {
		return err
	}
	candidates, err := loadCandidates(candidatesGlob)
	if err != nil {
		return err
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, logger)
	limiter := service.NewRateLimiter(cfg.RequestsPerSecond, logger)
	extractor := service.NewPersonalityTraitsExtractor(llmClient, limiter, cfg.LLMModel, logger)
	scorer := service.NewCompatibilityScorer(llmClient, limiter, cfg.LLMModel, logger)
	analysisSvc := service.NewAnalysisService(scorer, extractor, limiter, logger)

	result, err := analysisSvc.Analyze(ctx, teamData, candidates)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	store := service.NewResultStore(outputFile, logger)
	if err := store.Save(result); err != nil {
		return err
	}

	summary := result.TeamInsights.CandidatePoolSummary
	if summary != nil {
		logger.Info("analysis complete",
			zap.Int("candidates", result.AnalysisMetadata.CandidatesCount),
			zap.Float64("average_compatibility", summary.AverageCompatibility),
			zap.Float64("best_compatibility", summary.BestCompatibility),
			zap.Int("above_threshold", summary.CandidatesAboveThreshold),
		)
	}

	if !syncIndex {
		return nil
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("cannot sync index: DATABASE_URL not configured")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	assistant := service.NewAssistantService(
		logger, llmClient, repository.NewPgCandidateIndexRepository(pool), limiter, nil,
		cfg.LLMModel, cfg.LLMEmbeddingModel, cfg.CollectionName, cfg.AssistantMaxResults,
	)
	count, err := assistant.SyncFromResult(ctx, result)
	if err != nil {
		return fmt.Errorf("index sync: %w", err)
	}
	logger.Info("index synced", zap.Int("candidates", count))
	return nil
}

func loadTeam(path string) (domain.TeamInput, error) {
	var team domain.TeamInput
	data, err := os.ReadFile(path)
	if err != nil {
		return team, fmt.Errorf("read team file: %w", err)
	}
	if err := json.Unmarshal(data, &team); err != nil {
		return team, fmt.Errorf("parse team file %s: %w", path, err)
	}
	return team, nil
}

func loadCandidates(glob string) ([]domain.CandidateInput, error) {
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("bad candidates glob: %w", err)
	}

	var candidates []domain.CandidateInput
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read candidate file: %w", err)
		}
		// Formato por archivo: {"candidate": {...}} o el candidato directo.
		var wrapped struct {
			Candidate *domain.CandidateInput `json:"candidate"`
		}
		if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Candidate != nil {
			candidates = append(candidates, *wrapped.Candidate)
			continue
		}
		var candidate domain.CandidateInput
		if err := json.Unmarshal(data, &candidate); err != nil {
			return nil, fmt.Errorf("parse candidate file %s: %w", path, err)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}
