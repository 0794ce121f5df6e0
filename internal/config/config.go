package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuracion del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	LLMAPIKey         string  `env:"LLM_API_KEY,required"`
	LLMBaseURL        string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel          string  `env:"LLM_MODEL" envDefault:"mistral-small-latest"`
	LLMEmbeddingModel string  `env:"LLM_EMBEDDING_MODEL" envDefault:"mistral-embed"`
	RequestsPerSecond float64 `env:"LLM_REQUESTS_PER_SECOND" envDefault:"1.0"`

	ResultsFile         string `env:"COMPATIBILITY_SCORES_FILE" envDefault:"data/compatibility_scores.json"`
	CollectionName      string `env:"ASSISTANT_COLLECTION_NAME" envDefault:"candidates"`
	AssistantAutoSync   bool   `env:"ASSISTANT_AUTO_SYNC" envDefault:"true"`
	AssistantMaxResults int    `env:"ASSISTANT_MAX_RESULTS" envDefault:"5"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	QueryCacheTTL int    `env:"QUERY_CACHE_TTL_SECONDS" envDefault:"60"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
