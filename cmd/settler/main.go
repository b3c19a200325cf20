package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/dlobex/dlobex/config"
	"github.com/dlobex/dlobex/pkg/engine"
	kafka_wrapper "github.com/dlobex/dlobex/pkg/infra/kafka"
	postgres_wrapper "github.com/dlobex/dlobex/pkg/infra/postgres"
	"github.com/dlobex/dlobex/pkg/logging"
	"github.com/dlobex/dlobex/pkg/repo"
)

// settler drains the settlements topic into postgres, giving the ledger side
// a durable, replayable record of every instruction the engine emitted.

type settlementEnvelope struct {
	Kind  string                `json:"kind"`
	Pair  string                `json:"pair"`
	Event engine.SettlementDone `json:"event"`
}

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init("dlobex-settler", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.SettlementDB)
	settlements := repo.NewRepo(db).Settlement()

	consumer := kafka_wrapper.NewConsumer(kafka_wrapper.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.Topics.Settlements,
	})
	defer consumer.Close() // nolint

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		logger.Info("shutting down")
		cancel()
	}()

	err = consumer.Run(ctx, func(ctx context.Context, m kafka.Message) error {
		var env settlementEnvelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			logger.Warn("skip malformed settlement message", zap.Error(err))
			return nil
		}
		in := env.Event
		_, err := settlements.Create(ctx, &repo.SettlementRecord{
			LogIndex:      in.Index,
			Counterparty1: in.Counterparty1,
			Amount1:       in.Amount1,
			Asset1:        in.Asset1,
			Counterparty2: in.Counterparty2,
			Amount2:       in.Amount2,
			Asset2:        in.Asset2,
			Price:         in.Price,
		})
		return err
	})
	if err != nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
}
