package marketdata

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache mirrors top-of-book and last trade price into redis so read-heavy
// consumers (tickers, dashboards) never touch the matching engine.
type Cache struct {
	rdb *redis.Client
	key string
}

func NewCache(rdb *redis.Client, pair string) *Cache {
	return &Cache{rdb: rdb, key: "dlobex:md:" + pair}
}

// RecordTrade stores the price of the latest settlement.
func (c *Cache) RecordTrade(ctx context.Context, price int64) error {
	return c.rdb.HSet(ctx, c.key,
		"last_price", strconv.FormatInt(price, 10),
		"updated_at", time.Now().UTC().Format(time.RFC3339),
	).Err()
}

// RecordTopOfBook stores the current best bid and ask; empty sides are
// written as "-" so consumers can tell an empty book from a stale field.
func (c *Cache) RecordTopOfBook(ctx context.Context, buyPrices, sellPrices []int64) error {
	bid, ask := "-", "-"
	if len(buyPrices) > 0 {
		bid = strconv.FormatInt(buyPrices[0], 10)
	}
	if len(sellPrices) > 0 {
		ask = strconv.FormatInt(sellPrices[0], 10)
	}
	return c.rdb.HSet(ctx, c.key,
		"best_bid", bid,
		"best_ask", ask,
		"updated_at", time.Now().UTC().Format(time.RFC3339),
	).Err()
}

// Snapshot reads the cached fields back, mainly for diagnostics.
func (c *Cache) Snapshot(ctx context.Context) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, c.key).Result()
}
