package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate        bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	JWTSecret          string `env:"JWT_SECRET,required,notEmpty"`
	SessionTTLHours    int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	CookieName         string `env:"COOKIE_NAME" envDefault:"token"`
	CookieSecure       bool   `env:"COOKIE_SECURE" envDefault:"false"`
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	LoginMaxAttempts   int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"`
	LoginWindowMinutes int    `env:"LOGIN_WINDOW_MINUTES" envDefault:"15"`
	S3Bucket           string `env:"S3_BUCKET"`
	S3Region           string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint         string `env:"S3_ENDPOINT"`
	S3AccessKey        string `env:"S3_ACCESS_KEY"`
	S3SecretKey        string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL    string `env:"S3_PUBLIC_BASE_URL"`
	MaxUploadMB        int    `env:"MAX_UPLOAD_MB" envDefault:"5"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SessionTTL devuelve la vigencia del token de sesión.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// LoginWindow devuelve la ventana del limitador de intentos de login.
func (c *Config) LoginWindow() time.Duration {
	if c.LoginWindowMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.LoginWindowMinutes) * time.Minute
}

// MaxUploadBytes devuelve el tamaño máximo aceptado para imágenes.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// UploadsEnabled indica si hay un bucket configurado para imágenes.
func (c *Config) UploadsEnabled() bool {
	return c.S3Bucket != ""
}

// ClientConfig es la configuración de cmd/socialctl.
type ClientConfig struct {
	APIURL string `env:"INSTACLONE_API_URL" envDefault:"http://localhost:8080/api/v1"`
}

// LoadClientConfig carga la configuración del cliente desde variables de entorno.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
