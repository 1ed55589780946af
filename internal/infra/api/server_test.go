package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"otc_go/internal/domain"
	"otc_go/internal/market"
	"otc_go/internal/oracle"
	"otc_go/internal/token"
)

func newTestServer(t *testing.T) (*Server, *token.Token, *token.Token) {
	t.Helper()

	weth := token.New(domain.Asset{Address: "0xweth", Symbol: "WETH", Decimals: 18})
	dai := token.New(domain.Asset{Address: "0xdai", Symbol: "DAI", Decimals: 18})
	reg := token.NewRegistry()
	reg.Register(weth)
	reg.Register(dai)

	o := oracle.NewPoolOracle("oracle-1")
	o.SetPool(oracle.Pool{
		AssetA:   "0xweth",
		AssetB:   "0xdai",
		ReserveA: decimal.NewFromInt(1),
		ReserveB: decimal.NewFromInt(2000),
	})

	m := market.New("0xmarket", "0xowner", o, reg, nil, nil)

	weth.Mint("0xalice", decimal.NewFromInt(100))
	weth.Approve("0xalice", "0xmarket", decimal.NewFromInt(100))
	dai.Mint("0xbob", decimal.NewFromInt(1000000))
	dai.Approve("0xbob", "0xmarket", decimal.NewFromInt(1000000))

	return NewServer(m), weth, dai
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestOfferLifecycleOverHTTP(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/offers", map[string]any{
		"maker":         "0xalice",
		"asset_offered": "0xweth",
		"asset_wanted":  "0xdai",
		"amount":        "10",
		"discount_bps":  -5000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created map[string]uint64
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created["offer_id"] != 1 {
		t.Fatalf("offer_id = %d, want 1", created["offer_id"])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/offers/1/amount-in?amount_out=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("probe status = %d, body %s", rec.Code, rec.Body)
	}
	var probe map[string]decimal.Decimal
	if err := json.Unmarshal(rec.Body.Bytes(), &probe); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !probe["amount_in"].Equal(decimal.NewFromInt(1900)) {
		t.Errorf("amount_in = %s, want 1900", probe["amount_in"])
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/offers/1/take", map[string]any{
		"taker":      "0xbob",
		"amount_out": "10",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("take status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/offers/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var off domain.Offer
	if err := json.Unmarshal(rec.Body.Bytes(), &off); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if off.IsOpen() {
		t.Error("offer should be closed after full take")
	}
}

func TestErrorMapping(t *testing.T) {
	srv, _, _ := newTestServer(t)

	t.Run("Unknown Offer Is 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/offers/99/take", map[string]any{
			"taker": "0xbob", "amount_out": "1",
		})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("Foreign Cancel Is 403", func(t *testing.T) {
		doJSON(t, srv, http.MethodPost, "/api/offers", map[string]any{
			"maker": "0xalice", "asset_offered": "0xweth", "asset_wanted": "0xdai",
			"amount": "1", "discount_bps": 0,
		})
		rec := doJSON(t, srv, http.MethodPost, "/api/offers/1/cancel", map[string]any{
			"caller": "0xbob",
		})
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("Bad Pair Is 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/offers", map[string]any{
			"maker": "0xalice", "asset_offered": "0xweth", "asset_wanted": "0xusdc",
			"amount": "1", "discount_bps": 0,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("Malformed Body Is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/offers", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
