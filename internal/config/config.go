package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	// Credencial estática que valida el header x-api-key y sirve de
	// identidad implícita para el tracking de sesiones.
	HoneypotAPIKey string `env:"HONEYPOT_API_KEY,required"`

	LLMAPIKey  string `env:"LLM_API_KEY,required"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	SessionTimeoutMinutes   int     `env:"SESSION_TIMEOUT_MINUTES" envDefault:"30"`
	ContextWindowMessages   int     `env:"CONTEXT_WINDOW_MESSAGES" envDefault:"10"`
	ScamConfidenceThreshold float64 `env:"SCAM_CONFIDENCE_THRESHOLD" envDefault:"0.5"`

	// Callback de resultado final (opcional; vacío = deshabilitado).
	CallbackURL string `env:"CALLBACK_URL"`

	// Archivo de inteligencia en Postgres (opcional; vacío = deshabilitado).
	DatabaseURL string `env:"DATABASE_URL"`

	// Rate limiting por API key vía Redis (opcional; vacío = deshabilitado).
	RedisAddr       string `env:"REDIS_ADDR"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`

	// Superficie admin protegida con JWT (opcional; vacío = deshabilitada).
	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
