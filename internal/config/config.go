package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mockchat/internal/simulation"
)

// Config is the process configuration.
type Config struct {
	HTTPAddr        string
	Environment     string
	LogLevel        string
	LogFormat       string
	DebugRoutes     bool
	JournalDSN      string
	AMQPURL         string
	AMQPExchange    string
	AuditRoutingKey string
	OTLPEndpoint    string
	RandomSeed      int64
	SimConfigPath   string
	Presence        bool
	Simulation      simulation.Config
}

// Load reads an optional .env file, the environment and the optional YAML simulation file
// named by SIM_CONFIG.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		JournalDSN:      getEnv("DB_DSN", ""),
		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "mockchat.events"),
		AuditRoutingKey: getEnv("AUDIT_ROUTING_KEY", "audit.mockchat"),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		SimConfigPath:   getEnv("SIM_CONFIG", ""),
		Simulation:      simulation.DefaultConfig(),
	}

	var err error
	if cfg.DebugRoutes, err = getBool("DEBUG_ROUTES", false); err != nil {
		return Config{}, err
	}
	if cfg.Presence, err = getBool("SIM_PRESENCE", true); err != nil {
		return Config{}, err
	}
	seed := getEnv("SIM_SEED", "")
	if seed == "" {
		cfg.RandomSeed = time.Now().UnixNano()
	} else if cfg.RandomSeed, err = strconv.ParseInt(seed, 10, 64); err != nil {
		return Config{}, fmt.Errorf("SIM_SEED: %w", err)
	}

	if cfg.SimConfigPath != "" {
		sim, err := LoadSimulation(cfg.SimConfigPath, cfg.Simulation)
		if err != nil {
			return Config{}, err
		}
		cfg.Simulation = sim
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return Config{}, fmt.Errorf("simulation config: %w", err)
	}
	return cfg, nil
}

// LoadSimulation overlays the YAML file at path on base. Keys missing from the file keep
// their base values.
func LoadSimulation(path string, base simulation.Config) (simulation.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return simulation.Config{}, fmt.Errorf("read simulation config: %w", err)
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return simulation.Config{}, fmt.Errorf("parse simulation config %s: %w", path, err)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
