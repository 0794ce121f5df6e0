package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"teamfit/internal/domain"
)

// CandidateIndexRepository es el indice vectorial de candidatos. El sync
// reemplaza el contenido completo; no hay upsert incremental.
type CandidateIndexRepository interface {
	ReplaceAll(ctx context.Context, entries []domain.CandidateIndexEntry) error
	SearchNearest(ctx context.Context, embedding pgvector.Vector, k int) ([]domain.RetrievedCandidate, error)
	Count(ctx context.Context) (int, error)
	RecommendationCounts(ctx context.Context) (map[string]int, error)
}

type PgCandidateIndexRepository struct {
	pool *pgxpool.Pool
}

func NewPgCandidateIndexRepository(pool *pgxpool.Pool) *PgCandidateIndexRepository {
	return &PgCandidateIndexRepository{pool: pool}
}

// ReplaceAll borra el indice e inserta todas las entradas en una transaccion,
// para que los lectores nunca vean un esquema viejo mezclado con el nuevo.
func (r *PgCandidateIndexRepository) ReplaceAll(ctx context.Context, entries []domain.CandidateIndexEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM candidate_index`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	const query = `
		INSERT INTO candidate_index (
			candidate_id, name, position, compatibility_score, recommendation, summary,
			strengths, concerns, openness, conscientiousness, extraversion, agreeableness,
			neuroticism, searchable_text, embedding, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for _, e := range entries {
		_, err := tx.Exec(ctx, query,
			e.CandidateID,
			e.Name,
			e.Position,
			e.CompatibilityScore,
			e.Recommendation,
			e.Summary,
			e.Strengths,
			e.Concerns,
			e.Traits.Openness,
			e.Traits.Conscientiousness,
			e.Traits.Extraversion,
			e.Traits.Agreeableness,
			e.Traits.Neuroticism,
			e.SearchableText,
			e.Embedding,
			e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert candidate %s: %w", e.CandidateID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgCandidateIndexRepository) SearchNearest(ctx context.Context, embedding pgvector.Vector, k int) ([]domain.RetrievedCandidate, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT candidate_id, name, position, compatibility_score, recommendation, summary,
			strengths, concerns, openness, conscientiousness, extraversion, agreeableness,
			neuroticism, searchable_text, created_at,
			1 - (embedding <=> $1) AS relevance
		FROM candidate_index
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, embedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.RetrievedCandidate
	for rows.Next() {
		var c domain.RetrievedCandidate
		if err := rows.Scan(
			&c.CandidateID,
			&c.Name,
			&c.Position,
			&c.CompatibilityScore,
			&c.Recommendation,
			&c.Summary,
			&c.Strengths,
			&c.Concerns,
			&c.Traits.Openness,
			&c.Traits.Conscientiousness,
			&c.Traits.Extraversion,
			&c.Traits.Agreeableness,
			&c.Traits.Neuroticism,
			&c.SearchableText,
			&c.CreatedAt,
			&c.VectorRelevanceScore,
		); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PgCandidateIndexRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM candidate_index`).Scan(&count)
	return count, err
}

func (r *PgCandidateIndexRepository) RecommendationCounts(ctx context.Context) (map[string]int, error) {
	const query = `
		SELECT recommendation, count(*)
		FROM candidate_index
		GROUP BY recommendation
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var rec string
		var n int
		if err := rows.Scan(&rec, &n); err != nil {
			return nil, err
		}
		counts[rec] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
