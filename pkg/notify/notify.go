package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/dlobex/dlobex/pkg/engine"
	kafka_wrapper "github.com/dlobex/dlobex/pkg/infra/kafka"
)

type Topics struct {
	Orders      string `yaml:"orders"`
	Settlements string `yaml:"settlements"`
	Admin       string `yaml:"admin"`
}

// Publisher forwards engine events onto kafka topics. It is registered as an
// engine subscriber; the producer is async so matching never waits on the
// broker.
type Publisher struct {
	prod   *kafka_wrapper.Producer
	topics Topics
	pair   string
	log    *zap.Logger
}

func NewPublisher(prod *kafka_wrapper.Producer, topics Topics, pair string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{prod: prod, topics: topics, pair: pair, log: log}
}

// Handle routes one engine event to its topic. Keyed by pair so one pair's
// events stay ordered within a partition.
func (p *Publisher) Handle(ev engine.Event) {
	topic := p.topicFor(ev)
	if topic == "" {
		return
	}

	envelope := struct {
		Kind  string       `json:"kind"`
		Pair  string       `json:"pair"`
		Event engine.Event `json:"event"`
	}{Kind: ev.Kind(), Pair: p.pair, Event: ev}

	if err := p.prod.PublishJSON(context.Background(), topic, p.pair, envelope); err != nil {
		p.log.Warn("publish event failed",
			zap.String("kind", ev.Kind()),
			zap.String("topic", topic),
			zap.Error(err))
	}
}

func (p *Publisher) topicFor(ev engine.Event) string {
	switch ev.(type) {
	case engine.OrderPlaced:
		return p.topics.Orders
	case engine.SettlementDone:
		return p.topics.Settlements
	case engine.TradingStateChanged, engine.ParticipantChanged:
		return p.topics.Admin
	}
	return ""
}

func (p *Publisher) Close() error {
	return p.prod.Close()
}
