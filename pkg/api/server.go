package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/dlobex/dlobex/pkg/engine"
)

// Server is the HTTP surface over one matching engine. The engine serializes
// its own calls, so handlers stay stateless.
type Server struct {
	eng    *engine.Engine
	router *mux.Router
	log    *zap.Logger
}

func NewServer(eng *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		eng:    eng,
		router: mux.NewRouter(),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handlePlaceOrder).Methods("POST")
	api.HandleFunc("/book", s.handleGetBook).Methods("GET")
	api.HandleFunc("/book/prices", s.handleGetPrices).Methods("GET")
	api.HandleFunc("/settlements", s.handleGetSettlements).Methods("GET")
	api.HandleFunc("/settlements/{index}", s.handleGetSettlement).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/participants", s.handleAddParticipant).Methods("POST")
	admin.HandleFunc("/participants/{owner}", s.handleGetParticipant).Methods("GET")
	admin.HandleFunc("/participants/{owner}", s.handleRemoveParticipant).Methods("DELETE")
	admin.HandleFunc("/trading/start", s.handleStartTrading).Methods("POST")
	admin.HandleFunc("/trading/stop", s.handleStopTrading).Methods("POST")
	admin.HandleFunc("/reset", s.handleReset).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler wraps the router with CORS and per-request logging.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.withRequestID(s.router))
}

func (s *Server) Start(addr string) error {
	s.log.Info("api server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New().String()
		w.Header().Set("X-Request-Id", reqID)
		s.log.Debug("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	isBuy := req.Side == "BUY"

	var err error
	switch req.Type {
	case "MARKET":
		err = s.eng.PlaceMarketOrder(r.Context(), req.Owner, isBuy, req.Quantity)
	case "", "LIMIT":
		err = s.eng.PlaceLimitOrder(r.Context(), req.Owner, req.ClientOrderID, isBuy, req.Quantity, req.Price)
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown order type"))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, PlaceOrderResponse{Status: "accepted"})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BookResponse{
		Buys:  s.eng.Depth(true),
		Sells: s.eng.Depth(false),
	})
}

func (s *Server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PricesResponse{
		BuyPrices:  s.eng.BuyPrices(),
		SellPrices: s.eng.SellPrices(),
	})
}

func (s *Server) handleGetSettlements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SettlementsResponse{Count: s.eng.NumSettlements()})
}

func (s *Server) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in, err := s.eng.Settlement(idx)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.eng.AddParticipant(req.Owner)
	writeJSON(w, http.StatusOK, ParticipantResponse{Owner: req.Owner, Allowed: true})
}

func (s *Server) handleGetParticipant(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	writeJSON(w, http.StatusOK, ParticipantResponse{
		Owner:   owner,
		Allowed: s.eng.IsParticipantAllowed(owner),
	})
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	s.eng.RemoveParticipant(owner)
	writeJSON(w, http.StatusOK, ParticipantResponse{Owner: owner, Allowed: false})
}

func (s *Server) handleStartTrading(w http.ResponseWriter, r *http.Request) {
	s.eng.StartTrading()
	writeJSON(w, http.StatusOK, TradingResponse{Active: true})
}

func (s *Server) handleStopTrading(w http.ResponseWriter, r *http.Request) {
	s.eng.StopTrading()
	writeJSON(w, http.StatusOK, TradingResponse{Active: false})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.eng.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps engine error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrParticipantNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrTradingNotActive):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrSelfTrade),
		errors.Is(err, engine.ErrSettlementFunds):
		return http.StatusConflict
	case errors.Is(err, engine.ErrSettlementIndex):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func kindFor(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, engine.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, engine.ErrTradingNotActive):
		return "trading_not_active"
	case errors.Is(err, engine.ErrParticipantNotAllowed):
		return "participant_not_allowed"
	case errors.Is(err, engine.ErrCrossedBuyPrice):
		return "crossed_buy_price"
	case errors.Is(err, engine.ErrCrossedSellPrice):
		return "crossed_sell_price"
	case errors.Is(err, engine.ErrSelfTrade):
		return "self_trade"
	case errors.Is(err, engine.ErrSettlementFunds):
		return "settlement_funds_unavailable"
	case errors.Is(err, engine.ErrSettlementIndex):
		return "index_out_of_range"
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kindFor(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
