package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"otc_go/internal/domain"
	"otc_go/internal/infra"
	"otc_go/internal/market"
)

// Server exposes the market operations over HTTP JSON. Caller identity
// travels in the request body; authentication is out of scope here and
// belongs to a fronting gateway.
type Server struct {
	market *market.Market
	mux    *http.ServeMux
}

// NewServer builds the route table around a market.
func NewServer(m *market.Market) *Server {
	s := &Server{market: m, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /api/offers", s.handleMakeOffer)
	s.mux.HandleFunc("GET /api/offers", s.handleListOffers)
	s.mux.HandleFunc("GET /api/offers/{id}", s.handleGetOffer)
	s.mux.HandleFunc("GET /api/offers/{id}/amount-in", s.handleAmountIn)
	s.mux.HandleFunc("POST /api/offers/{id}/take", s.handleTake)
	s.mux.HandleFunc("POST /api/offers/{id}/cancel", s.handleCancel)
	s.mux.HandleFunc("GET /api/last-offer-id", s.handleLastOfferID)
	s.mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type makeOfferRequest struct {
	Maker        string          `json:"maker"`
	AssetOffered string          `json:"asset_offered"`
	AssetWanted  string          `json:"asset_wanted"`
	Amount       decimal.Decimal `json:"amount"`
	DiscountBps  int64           `json:"discount_bps"`
}

func (s *Server) handleMakeOffer(w http.ResponseWriter, r *http.Request) {
	var req makeOfferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := s.market.Offer(req.Maker, req.AssetOffered, req.AssetWanted, req.Amount, req.DiscountBps)
	if err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordOfferMade()
	writeJSON(w, http.StatusCreated, map[string]uint64{"offer_id": id})
}

type takeRequest struct {
	Taker     string          `json:"taker"`
	AmountOut decimal.Decimal `json:"amount_out"`
}

func (s *Server) handleTake(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req takeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.market.Take(req.Taker, id, req.AmountOut); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordOfferTaken()
	if off, err := s.market.GetOffer(id); err == nil && !off.IsOpen() {
		infra.GlobalMetrics.RecordOfferFulfilled()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "taken"})
}

type cancelRequest struct {
	Caller string `json:"caller"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.market.Cancel(req.Caller, id); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordOfferCancelled()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	off, err := s.market.GetOffer(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, off)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.market.OpenOffers())
}

func (s *Server) handleAmountIn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	amountOut, err := decimal.NewFromString(r.URL.Query().Get("amount_out"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_out"})
		return
	}

	in, err := s.market.GetAmountInForOffer(id, amountOut)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"amount_in": in})
}

func (s *Server) handleLastOfferID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{"offer_id": s.market.GetOfferID()})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer id"})
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

// writeError maps the market's failure taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	infra.GlobalMetrics.RecordRejected()

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrOfferClosed):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrOnlyMaker), errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientAllowance),
		errors.Is(err, domain.ErrTransferRejected):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", slog.Any("error", err))
	}
}
