package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	kafka_wrapper "github.com/dlobex/dlobex/pkg/infra/kafka"
	postgres_wrapper "github.com/dlobex/dlobex/pkg/infra/postgres"
	redis_wrapper "github.com/dlobex/dlobex/pkg/infra/redis"
	"github.com/dlobex/dlobex/pkg/notify"
)

// SeedParticipant pre-funds one allow-listed participant on the in-memory
// token ledger at startup.
type SeedParticipant struct {
	Owner         string `yaml:"owner"`
	BaseBalance   int64  `yaml:"base_balance"`
	TermBalance   int64  `yaml:"term_balance"`
	BaseAllowance int64  `yaml:"base_allowance"`
	TermAllowance int64  `yaml:"term_allowance"`
}

type ExchangeConfig struct {
	Pair         string            `yaml:"pair"`
	BaseAsset    string            `yaml:"base_asset"`
	TermAsset    string            `yaml:"term_asset"`
	HTTPAddr     string            `yaml:"http_addr"`
	AutoStart    bool              `yaml:"auto_start"`
	Participants []SeedParticipant `yaml:"participants"`
}

type KafkaConfig struct {
	Brokers []string      `yaml:"brokers"`
	GroupID string        `yaml:"group_id"`
	Topics  notify.Topics `yaml:"topics"`
}

func (c *KafkaConfig) ProducerConfig() kafka_wrapper.ProducerConfig {
	return kafka_wrapper.ProducerConfig{Brokers: c.Brokers}
}

type AppConfig struct {
	ServiceName  string                           `yaml:"service_name"`
	LogLevel     string                           `yaml:"log_level"`
	Exchange     *ExchangeConfig                  `yaml:"exchange"`
	SettlementDB *postgres_wrapper.PostgresConfig `yaml:"settlement_db"`
	Redis        *redis_wrapper.RedisConfig       `yaml:"redis"`
	Kafka        *KafkaConfig                     `yaml:"kafka"`
}

// Load loads config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(configBytes, cfg); err != nil {
		sugar.Error("failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)
	return cfg, nil
}
