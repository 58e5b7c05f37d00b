package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port                   string        `env:"PORT" envDefault:"5000"`
	DBUser                 string        `env:"DB_USER,required"`
	DBPassword             string        `env:"DB_PASSWORD,required"`
	DBHost                 string        `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string        `env:"DB_NAME,required"`
	DBPort                 string        `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string        `env:"INSTANCE_CONNECTION_NAME"`
	DBConnectRetry         time.Duration `env:"DB_CONNECT_RETRY" envDefault:"5s"`

	MediaBackend   string `env:"MEDIA_BACKEND" envDefault:"local"` // local, gcs or minio
	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"uploads"`
	MediaDir       string `env:"MEDIA_DIR" envDefault:"found_images"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	GCSBucket          string `env:"GCS_BUCKET"`
	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE"`

	MinIOEndpoint       string `env:"MINIO_ENDPOINT"`
	MinIOPublicEndpoint string `env:"MINIO_PUBLIC_ENDPOINT"`
	MinIOAccessKey      string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey      string `env:"MINIO_SECRET_KEY"`
	MinIOBucket         string `env:"MINIO_BUCKET" envDefault:"found-images"`
	MinIOUseSSL         bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"lost-found.events"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty   bool     `env:"LOG_PRETTY" envDefault:"false"`
}

// ClientConfig configures the command-line client. None of it is required.
type ClientConfig struct {
	APIBaseURL       string `env:"LOSTFOUND_API" envDefault:"http://localhost:5000"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiEmbedModel string `env:"GEMINI_EMBED_MODEL" envDefault:"gemini-embedding-001"`
	NominatimURL     string `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org"`
	GeolocateURL     string `env:"GEOLOCATE_URL" envDefault:"http://ip-api.com/json"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"warn"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.MediaBackend = strings.ToLower(strings.TrimSpace(cfg.MediaBackend))
	return &cfg, nil
}

func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/")
	return &cfg, nil
}

// MediaURLPrefix is the image_path prefix clients see. The server always mounts
// MEDIA_ROOT at /uploads, so it does not depend on where MEDIA_ROOT lives.
func (c *Config) MediaURLPrefix() string {
	return "uploads/" + strings.Trim(c.MediaDir, "/")
}

// UploadDir is the directory uploaded images are written to, relative to the working directory.
func (c *Config) UploadDir() string {
	return strings.TrimSuffix(c.MediaRoot, "/") + "/" + strings.Trim(c.MediaDir, "/")
}
