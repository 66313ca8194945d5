package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type CoreConfig struct {
	CookieSecret string `env:"COOKIE_SECRET, default=00000000000000000000000000000000"`
	DbPath       string `env:"DB_PATH, default=registry.db"`
	ListenAddr   string `env:"LISTEN_ADDR, default=0.0.0.0:3000"`
	Host         string `env:"HOST, default=https://stowage.sh"`
	Dev          bool   `env:"DEV, default=false"`
}

type DispatcherConfig struct {
	Interval  time.Duration `env:"INTERVAL, default=5s"`
	BatchSize int           `env:"BATCH_SIZE, default=32"`
}

type IndexConfig struct {
	GitRemote  string `env:"GIT_REMOTE"`
	SparseHost string `env:"SPARSE_HOST, default=https://index.stowage.sh"`
}

type StorageConfig struct {
	Endpoint string `env:"ENDPOINT"`
	Bucket   string `env:"BUCKET, default=stowage-packages"`
}

type ResendConfig struct {
	ApiKey   string `env:"API_KEY"`
	SentFrom string `env:"SENT_FROM, default=noreply@stowage.sh"`
}

type PosthogConfig struct {
	ApiKey   string `env:"API_KEY"`
	Endpoint string `env:"ENDPOINT, default=https://eu.i.posthog.com"`
}

type Config struct {
	Core       CoreConfig       `env:",prefix=STOWAGE_"`
	Dispatcher DispatcherConfig `env:",prefix=STOWAGE_DISPATCHER_"`
	Index      IndexConfig      `env:",prefix=STOWAGE_INDEX_"`
	Storage    StorageConfig    `env:",prefix=STOWAGE_STORAGE_"`
	Resend     ResendConfig     `env:",prefix=STOWAGE_RESEND_"`
	Posthog    PosthogConfig    `env:",prefix=STOWAGE_POSTHOG_"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	err := envconfig.Process(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
