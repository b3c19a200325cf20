package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dlobex/dlobex/config"
	"github.com/dlobex/dlobex/pkg/api"
	"github.com/dlobex/dlobex/pkg/engine"
	kafka_wrapper "github.com/dlobex/dlobex/pkg/infra/kafka"
	redis_wrapper "github.com/dlobex/dlobex/pkg/infra/redis"
	"github.com/dlobex/dlobex/pkg/logging"
	"github.com/dlobex/dlobex/pkg/marketdata"
	"github.com/dlobex/dlobex/pkg/notify"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	exCfg := cfg.Exchange
	ledger := engine.NewTokenLedger(exCfg.BaseAsset, exCfg.TermAsset)
	eng := engine.New(ledger, &engine.Config{
		BaseAsset: exCfg.BaseAsset,
		TermAsset: exCfg.TermAsset,
		Logger:    logger,
	})

	for _, p := range exCfg.Participants {
		if err := seedParticipant(ledger, exCfg, p); err != nil {
			logger.Fatal("seed participant", zap.String("owner", p.Owner), zap.Error(err))
		}
		eng.AddParticipant(p.Owner)
	}

	if cfg.Kafka != nil {
		prod := kafka_wrapper.NewProducer(cfg.Kafka.ProducerConfig())
		pub := notify.NewPublisher(prod, cfg.Kafka.Topics, exCfg.Pair, logger)
		defer pub.Close() // nolint
		eng.Subscribe(pub.Handle)
	}

	if cfg.Redis != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			logger.Fatal("init redis", zap.Error(err))
		}
		cache := marketdata.NewCache(rdb, exCfg.Pair)

		// Subscribers run inside engine calls, so the cache update happens on
		// its own goroutine where reading book state is safe. Dropped events
		// only delay the next refresh.
		events := make(chan engine.Event, 256)
		eng.Subscribe(func(ev engine.Event) {
			select {
			case events <- ev:
			default:
			}
		})
		go func() {
			for ev := range events {
				ctx := context.Background()
				if done, ok := ev.(engine.SettlementDone); ok {
					if err := cache.RecordTrade(ctx, done.Price); err != nil {
						logger.Warn("marketdata record trade", zap.Error(err))
					}
				}
				if err := cache.RecordTopOfBook(ctx, eng.BuyPrices(), eng.SellPrices()); err != nil {
					logger.Warn("marketdata record book", zap.Error(err))
				}
			}
		}()
	}

	if exCfg.AutoStart {
		eng.StartTrading()
	}

	srv := api.NewServer(eng, logger)
	go func() {
		if err := srv.Start(exCfg.HTTPAddr); err != nil {
			logger.Fatal("api server", zap.Error(err))
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info("shutting down")
}

func seedParticipant(ledger *engine.TokenLedger, exCfg *config.ExchangeConfig, p config.SeedParticipant) error {
	if err := ledger.Mint(exCfg.BaseAsset, p.Owner, p.BaseBalance); err != nil {
		return err
	}
	if err := ledger.Mint(exCfg.TermAsset, p.Owner, p.TermBalance); err != nil {
		return err
	}
	if err := ledger.Approve(exCfg.BaseAsset, p.Owner, p.BaseAllowance); err != nil {
		return err
	}
	return ledger.Approve(exCfg.TermAsset, p.Owner, p.TermAllowance)
}
