package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dlobex/dlobex/pkg/engine"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	ledger := engine.NewTokenLedger("HBAR", "HUSD")
	eng := engine.New(ledger, &engine.Config{BaseAsset: "HBAR", TermAsset: "HUSD"})
	for _, owner := range []string{"alice", "bob"} {
		for _, asset := range []string{"HBAR", "HUSD"} {
			if err := ledger.Mint(asset, owner, 100000); err != nil {
				t.Fatal(err)
			}
			if err := ledger.Approve(asset, owner, 100000); err != nil {
				t.Fatal(err)
			}
		}
		eng.AddParticipant(owner)
	}
	eng.StartTrading()

	srv := httptest.NewServer(NewServer(eng, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, eng
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestPlaceOrderEndpoint(t *testing.T) {
	srv, eng := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "alice", ClientOrderID: 1, Side: "BUY", Quantity: 10, Price: 650,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := decode[PlaceOrderResponse](t, resp); got.Status != "accepted" {
		t.Errorf("expected accepted, got %q", got.Status)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}

	if got := eng.BuyPrices(); len(got) != 1 || got[0] != 650 {
		t.Errorf("expected buy levels [650], got %v", got)
	}
}

func TestPlaceOrderErrorKinds(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "alice", Side: "BUY", Quantity: 0, Price: 650,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, resp); got.Kind != "invalid_quantity" {
		t.Errorf("expected kind invalid_quantity, got %q", got.Kind)
	}

	resp = postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "mallory", Side: "BUY", Quantity: 10, Price: 650,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, resp); got.Kind != "participant_not_allowed" {
		t.Errorf("expected kind participant_not_allowed, got %q", got.Kind)
	}

	resp = postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "alice", Side: "BUY", Type: "ICEBERG", Quantity: 10, Price: 650,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSelfTradeMapsToConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "alice", ClientOrderID: 1, Side: "BUY", Quantity: 10, Price: 650,
	})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "alice", ClientOrderID: 2, Side: "SELL", Quantity: 10, Price: 650,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, resp); got.Kind != "self_trade" {
		t.Errorf("expected kind self_trade, got %q", got.Kind)
	}
}

func TestBookAndPricesEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for i, p := range []int64{650, 640} {
		resp := postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
			Owner: "alice", ClientOrderID: int64(i + 1), Side: "BUY", Quantity: 10, Price: p,
		})
		resp.Body.Close()
	}
	resp := postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "bob", ClientOrderID: 3, Side: "SELL", Quantity: 5, Price: 660,
	})
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/book")
	if err != nil {
		t.Fatal(err)
	}
	book := decode[BookResponse](t, resp)
	if len(book.Buys) != 2 || book.Buys[0].Price != 650 || book.Buys[1].Price != 640 {
		t.Errorf("unexpected buy depth %+v", book.Buys)
	}
	if len(book.Sells) != 1 || book.Sells[0].Price != 660 || book.Sells[0].Quantity != 5 {
		t.Errorf("unexpected sell depth %+v", book.Sells)
	}

	resp, err = http.Get(srv.URL + "/api/v1/book/prices")
	if err != nil {
		t.Fatal(err)
	}
	prices := decode[PricesResponse](t, resp)
	if len(prices.BuyPrices) != 2 || prices.BuyPrices[0] != 650 {
		t.Errorf("unexpected buy prices %v", prices.BuyPrices)
	}
	if len(prices.SellPrices) != 1 || prices.SellPrices[0] != 660 {
		t.Errorf("unexpected sell prices %v", prices.SellPrices)
	}
}

func TestSettlementEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "alice", ClientOrderID: 1, Side: "BUY", Quantity: 50, Price: 22,
	})
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/v1/orders", PlaceOrderRequest{
		Owner: "bob", ClientOrderID: 2, Side: "SELL", Quantity: 50, Price: 22,
	})
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/settlements")
	if err != nil {
		t.Fatal(err)
	}
	if got := decode[SettlementsResponse](t, resp); got.Count != 1 {
		t.Fatalf("expected 1 settlement, got %d", got.Count)
	}

	resp, err = http.Get(srv.URL + "/api/v1/settlements/0")
	if err != nil {
		t.Fatal(err)
	}
	in := decode[engine.SettlementInstruction](t, resp)
	if in.Counterparty1 != "alice" || in.Amount1 != 1100 || in.Asset1 != "HUSD" {
		t.Errorf("unexpected instruction %+v", in)
	}

	resp, err = http.Get(srv.URL + "/api/v1/settlements/5")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, resp); got.Kind != "index_out_of_range" {
		t.Errorf("expected kind index_out_of_range, got %q", got.Kind)
	}
}

func TestAdminEndpoints(t *testing.T) {
	srv, eng := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/admin/participants", ParticipantRequest{Owner: "carol"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	if !eng.IsParticipantAllowed("carol") {
		t.Error("carol should be allowed after add")
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/admin/participants/carol", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if eng.IsParticipantAllowed("carol") {
		t.Error("carol should be removed")
	}

	resp, err = http.Get(srv.URL + "/api/v1/admin/participants/alice")
	if err != nil {
		t.Fatal(err)
	}
	if got := decode[ParticipantResponse](t, resp); !got.Allowed || got.Owner != "alice" {
		t.Errorf("unexpected participant response %+v", got)
	}

	resp = postJSON(t, srv.URL+"/api/v1/admin/trading/stop", nil)
	resp.Body.Close()
	if eng.TradingActive() {
		t.Error("trading should be stopped")
	}
	resp = postJSON(t, srv.URL+"/api/v1/admin/trading/start", nil)
	resp.Body.Close()
	if !eng.TradingActive() {
		t.Error("trading should be active again")
	}

	resp = postJSON(t, srv.URL+"/api/v1/admin/reset", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
