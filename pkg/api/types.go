package api

import "github.com/dlobex/dlobex/pkg/engine"

type PlaceOrderRequest struct {
	Owner         string `json:"owner"`
	ClientOrderID int64  `json:"client_order_id"`
	Type          string `json:"type"` // LIMIT or MARKET
	Side          string `json:"side"` // BUY or SELL
	Quantity      int64  `json:"quantity"`
	Price         int64  `json:"price,omitempty"`
}

type PlaceOrderResponse struct {
	Status string `json:"status"`
}

type BookResponse struct {
	Buys  []engine.PriceLevel `json:"buys"`
	Sells []engine.PriceLevel `json:"sells"`
}

type PricesResponse struct {
	BuyPrices  []int64 `json:"buy_prices"`
	SellPrices []int64 `json:"sell_prices"`
}

type SettlementsResponse struct {
	Count int `json:"count"`
}

type ParticipantRequest struct {
	Owner string `json:"owner"`
}

type ParticipantResponse struct {
	Owner   string `json:"owner"`
	Allowed bool   `json:"allowed"`
}

type TradingResponse struct {
	Active bool `json:"active"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
