package config

import (
	"fmt"
	"os"
	"strconv"

	"dropforge/pkg/domain"
)

// Config captures process-level configuration. Role accounts and ceilings are
// fixed for the lifetime of the process: the administrator, keeper, treasury,
// and fee-recipient identities cannot be rotated without a restart.
type Config struct {
	Addr string

	// NetworkID and DeploymentSeed feed the allowlist domain tag so a proof
	// minted against one deployment never verifies on another.
	NetworkID      string
	DeploymentSeed string

	Admin        domain.Account
	Keeper       domain.Account
	Treasury     domain.Account
	FeeRecipient domain.Account

	MaxCreators      uint64
	MaxDrops         uint64
	MaxPhasesPerDrop int
	FeeBpsCeiling    uint32
	MaxProofLength   int

	JWTSigningKey string

	PostgresDSN   string
	RedisAddr     string
	KafkaBrokers  string
	ActivityTopic string
}

// Defaults that hold unless overridden by environment.
const (
	defaultAddr             = ":8080"
	defaultMaxCreators      = 1_000_000
	defaultMaxDrops         = 1_000_000
	defaultMaxPhasesPerDrop = 8
	defaultFeeBpsCeiling    = 1_000
	defaultMaxProofLength   = 32
	defaultActivityTopic    = "dropforge.activity"
)

// FromEnv builds a Config from environment variables so main stays lean.
// Role accounts are required; everything else has a development default.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:             envOr("DROPFORGE_ADDR", defaultAddr),
		NetworkID:        envOr("DROPFORGE_NETWORK_ID", "dev"),
		DeploymentSeed:   os.Getenv("DROPFORGE_DEPLOYMENT_SEED"),
		MaxCreators:      envUint("DROPFORGE_MAX_CREATORS", defaultMaxCreators),
		MaxDrops:         envUint("DROPFORGE_MAX_DROPS", defaultMaxDrops),
		MaxPhasesPerDrop: int(envUint("DROPFORGE_MAX_PHASES_PER_DROP", defaultMaxPhasesPerDrop)),
		FeeBpsCeiling:    uint32(envUint("DROPFORGE_FEE_BPS_CEILING", defaultFeeBpsCeiling)),
		MaxProofLength:   int(envUint("DROPFORGE_MAX_PROOF_LENGTH", defaultMaxProofLength)),
		JWTSigningKey:    envOr("DROPFORGE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:      os.Getenv("DROPFORGE_POSTGRES_DSN"),
		RedisAddr:        os.Getenv("DROPFORGE_REDIS_ADDR"),
		KafkaBrokers:     os.Getenv("DROPFORGE_KAFKA_BROKERS"),
		ActivityTopic:    envOr("DROPFORGE_ACTIVITY_TOPIC", defaultActivityTopic),
	}

	var err error
	if cfg.Admin, err = requireAccount("DROPFORGE_ADMIN_ACCOUNT"); err != nil {
		return Config{}, err
	}
	if cfg.Keeper, err = requireAccount("DROPFORGE_KEEPER_ACCOUNT"); err != nil {
		return Config{}, err
	}
	if cfg.Treasury, err = requireAccount("DROPFORGE_TREASURY_ACCOUNT"); err != nil {
		return Config{}, err
	}
	if cfg.FeeRecipient, err = requireAccount("DROPFORGE_FEE_ACCOUNT"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func requireAccount(key string) (domain.Account, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return domain.Account{}, fmt.Errorf("%s is required", key)
	}
	account, err := domain.ParseAccount(raw)
	if err != nil {
		return domain.Account{}, fmt.Errorf("%s: %w", key, err)
	}
	return account, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
