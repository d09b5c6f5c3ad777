package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"tradedesk/internal/domain"
	"tradedesk/internal/infra"
	"tradedesk/internal/service"
)

// Server exposes the dashboard's REST and WebSocket boundary over the
// paper trading desk.
type Server struct {
	desk   domain.Desk
	alerts *service.AlertService
	router *mux.Router
	hub    *Hub
}

// NewServer creates a new API server.
func NewServer(desk domain.Desk, alerts *service.AlertService) *Server {
	s := &Server{
		desk:   desk,
		alerts: alerts,
		router: mux.NewRouter(),
		hub:    NewHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Market endpoints
	api.HandleFunc("/markets", s.handleGetMarkets).Methods("GET")
	api.HandleFunc("/markets/{symbol}", s.handleGetMarket).Methods("GET")

	// Order endpoints
	api.HandleFunc("/orders", s.handlePlaceOrder).Methods("POST")
	api.HandleFunc("/orders", s.handleGetOrders).Methods("GET")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}/cancel", s.handleCancelOrder).Methods("POST")

	// Ledger endpoints
	api.HandleFunc("/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/balances", s.handleGetBalances).Methods("GET")

	// Risk calculator
	api.HandleFunc("/pnl", s.handleComputePnL).Methods("POST")

	// Alert widget
	api.HandleFunc("/alerts", s.handleGetAlerts).Methods("GET")
	api.HandleFunc("/alerts", s.handleCreateAlert).Methods("POST")
	api.HandleFunc("/alerts/{id}", s.handleDeleteAlert).Methods("DELETE")

	// Observability
	api.HandleFunc("/metrics", s.handleGetMetrics).Methods("GET")

	// WebSocket tick stream
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Hub returns the WebSocket hub so bootstrap can wire it as an engine
// tick listener.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the full HTTP handler with CORS applied.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.desk.AllMarketData())
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	tick, ok := s.desk.MarketData(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSymbolNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tick)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order, err := s.desk.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	slog.Info("Order placed",
		slog.String("id", order.ID),
		slog.String("symbol", order.Symbol),
		slog.String("side", order.Side),
		slog.String("type", order.Type),
		slog.String("status", order.Status))
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Exchange: q.Get("exchange"),
		Symbol:   q.Get("symbol"),
		Status:   q.Get("status"),
	}
	writeJSON(w, http.StatusOK, s.desk.Orders(filter))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, ok := s.desk.Order(id)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrOrderNotFound)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cancelled := s.desk.CancelOrder(id)
	if cancelled {
		slog.Info("Order cancelled", slog.String("id", id))
	}
	writeJSON(w, http.StatusOK, cancelResponse{OrderID: id, Cancelled: cancelled})
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TradeFilter{
		Exchange: q.Get("exchange"),
		Symbol:   q.Get("symbol"),
	}
	writeJSON(w, http.StatusOK, s.desk.Trades(filter))
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.desk.Balances())
}

func (s *Server) handleComputePnL(w http.ResponseWriter, r *http.Request) {
	var req pnlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	current := req.CurrentPrice
	if current == nil {
		if req.Symbol == "" {
			writeError(w, http.StatusBadRequest, &domain.InvalidInputError{Field: "current_price", Value: "nil"})
			return
		}
		tick, ok := s.desk.MarketData(req.Symbol)
		if !ok {
			writeError(w, http.StatusNotFound, domain.ErrSymbolNotFound)
			return
		}
		current = &tick.Price
	}

	pnl, err := domain.ComputePnL(req.EntryPrice, *current, req.Amount, req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, pnl)
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.alerts.List()
	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, newAlertView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tick, ok := s.desk.MarketData(req.Symbol)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSymbolNotFound)
		return
	}
	if !req.TargetPrice.IsPositive() {
		writeError(w, http.StatusBadRequest, &domain.InvalidInputError{Field: "target", Value: req.TargetPrice.String()})
		return
	}

	alert := s.alerts.Add(req.Symbol, req.TargetPrice, tick.Price, req.Persistent)
	writeJSON(w, http.StatusCreated, newAlertView(alert))
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.alerts.Remove(id) {
		writeError(w, http.StatusNotFound, errors.New("alert not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==============================
// Helpers
// ==============================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusForError maps engine errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSymbolNotFound), errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEngineClosed):
		return http.StatusServiceUnavailable
	case domain.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
