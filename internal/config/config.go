package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config contiene toda la configuración de la aplicación
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Security SecurityConfig
	Web      WebConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Host string
}

// Addr devuelve la dirección de escucha host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	CallbackURL        string
	Scopes             []string
}

type SecurityConfig struct {
	SessionSecret string
	IsProd        bool
	CookieMaxAge  int
}

// WebConfig describe el frontend de la tienda.
type WebConfig struct {
	FrontendURL   string
	LoginRedirect string
}

type LogConfig struct {
	Level string
}

// Load carga y valida la configuración desde variables de entorno.
// Si existe un archivo .env se usa como base; el entorno tiene prioridad.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	frontend := strings.TrimRight(getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"), "/")

	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
			Host: getEnvOrDefault("HOST", ""),
		},
		Auth: AuthConfig{
			GoogleClientID:     required("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: required("GOOGLE_CLIENT_SECRET"),
			CallbackURL:        getEnvOrDefault("AUTH_CALLBACK_URL", "http://localhost:8080/auth/google/callback"),
			Scopes:             []string{"email", "profile"},
		},
		Security: SecurityConfig{
			SessionSecret: required("SESSION_SECRET"),
			IsProd:        getEnvOrDefault("ENV", "development") == "production",
			CookieMaxAge:  86400 * 30, // 30 días por defecto
		},
		Web: WebConfig{
			FrontendURL:   frontend,
			LoginRedirect: getEnvOrDefault("LOGIN_REDIRECT_URL", frontend+"/profile"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		},
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(config.Security.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes, got %d", len(config.Security.SessionSecret))
	}

	return config, nil
}

// getEnvOrDefault obtiene una variable de entorno o retorna un valor por defecto
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
