package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Fields are filled from the
// environment so main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string

	// AgencyWallet and GovernmentWallet receive fee payouts. Both are
	// required; registry construction rejects empty values.
	AgencyWallet     string
	GovernmentWallet string

	// Deployer receives the bootstrap admin and government capabilities.
	// Defaults to the agency wallet.
	Deployer string

	// PostgresURL enables the Postgres-backed stores when set; the memory
	// stores are used otherwise.
	PostgresURL string

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig holds connection settings for the fee-config cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("LANDLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "landledger.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	deployer := os.Getenv("DEPLOYER_ADDRESS")
	if deployer == "" {
		deployer = os.Getenv("AGENCY_WALLET")
	}

	return Server{
		Addr:             addr,
		JWTSigningKey:    jwtSigningKey,
		AgencyWallet:     os.Getenv("AGENCY_WALLET"),
		GovernmentWallet: os.Getenv("GOVERNMENT_WALLET"),
		Deployer:         deployer,
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
