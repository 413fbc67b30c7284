package screener

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"alpaca_bot/internal/models"
	"alpaca_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestService(baseURL string) *Service {
	return &Service{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: baseURL,
		stocks:  2,
		crypto:  2,
		workers: 2,
	}
}

func TestFindOpportunities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("scrIds") {
		case screenerCrypto:
			fmt.Fprint(w, `{"finance":{"result":[{"quotes":[{"symbol":"BTC-USD","shortName":"Bitcoin USD"},{"symbol":"ETH-USD","shortName":"Ethereum USD"}]}],"error":null}}`)
		case screenerLosers:
			fmt.Fprint(w, `{"finance":{"result":[{"quotes":[{"symbol":"AAPL","shortName":"Apple Inc."}]}],"error":null}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	got := s.FindOpportunities(context.Background())

	if len(got) != 3 {
		t.Fatalf("candidates = %d, want 3", len(got))
	}
	if got[0].AlpacaSymbol != "BTC/USD" || got[0].Class != models.ClassCrypto {
		t.Errorf("crypto candidate mapped wrong: %+v", got[0])
	}
	if got[0].YahooSymbol != "BTC-USD" {
		t.Errorf("source symbol must stay in yahoo form: %+v", got[0])
	}
	if got[2].AlpacaSymbol != "AAPL" || got[2].Class != models.ClassStock {
		t.Errorf("stock candidate mapped wrong: %+v", got[2])
	}
}

func TestFindOpportunitiesSourceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("scrIds") == screenerCrypto {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"finance":{"result":[{"quotes":[{"symbol":"TSLA","shortName":"Tesla"}]}],"error":null}}`)
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	got := s.FindOpportunities(context.Background())

	if len(got) != 1 || got[0].YahooSymbol != "TSLA" {
		t.Fatalf("expected only the stock source to contribute, got %+v", got)
	}
}

func TestToAlpacaSymbol(t *testing.T) {
	tests := []struct {
		in    string
		class models.AssetClass
		want  string
	}{
		{"BTC-USD", models.ClassCrypto, "BTC/USD"},
		{"DOGE-USD", models.ClassCrypto, "DOGE/USD"},
		{"AAPL", models.ClassStock, "AAPL"},
		{"BRK-B", models.ClassStock, "BRK-B"},
	}
	for _, tc := range tests {
		if got := toAlpacaSymbol(tc.in, tc.class); got != tc.want {
			t.Errorf("toAlpacaSymbol(%q, %s) = %q, want %q", tc.in, tc.class, got, tc.want)
		}
	}
}

func chartBody(t *testing.T, closes []interface{}) []byte {
	t.Helper()
	b, err := sonic.Marshal(map[string]any{
		"chart": map[string]any{
			"result": []any{
				map[string]any{
					"indicators": map[string]any{
						"quote": []any{map[string]any{"close": closes}},
					},
				},
			},
			"error": nil,
		},
	})
	if err != nil {
		t.Fatalf("marshal chart body: %v", err)
	}
	return b
}

func TestEnrich(t *testing.T) {
	closes := make([]interface{}, 0, 61)
	for i := 1; i <= 60; i++ {
		closes = append(closes, float64(i))
	}
	closes = append(closes, nil) // дырка в истории не должна ломать расчёт

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/AAPL":
			w.Write(chartBody(t, closes))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	candidates := []models.Candidate{
		{YahooSymbol: "AAPL", AlpacaSymbol: "AAPL", Class: models.ClassStock},
		{YahooSymbol: "BAD", AlpacaSymbol: "BAD", Class: models.ClassStock},
	}

	snaps := s.Enrich(context.Background(), candidates)
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1 (BAD must be dropped)", len(snaps))
	}

	snap := snaps[0]
	if snap.Symbol != "AAPL" {
		t.Errorf("symbol = %s", snap.Symbol)
	}
	if snap.Close != 60 {
		t.Errorf("close = %v, want last real bar 60", snap.Close)
	}
	if math.IsNaN(snap.MA14) || math.IsNaN(snap.MA50) || math.IsNaN(snap.RSI14) || math.IsNaN(snap.RSI50) {
		t.Errorf("indicators must be computed on 60 bars: %+v", snap)
	}
	if math.IsNaN(snap.BBHigh) || math.IsNaN(snap.BBLow) {
		t.Errorf("bollinger bands missing: %+v", snap)
	}
	if snap.RSI14 < 99 {
		t.Errorf("rsi14 of a strictly rising series = %v, want ~100", snap.RSI14)
	}
}

func TestComputeIndicatorsShortSeries(t *testing.T) {
	ind := computeIndicators([]float64{1, 2, 3})
	for name, v := range map[string]float64{
		"ma14": ind.ma14, "ma50": ind.ma50,
		"rsi14": ind.rsi14, "rsi50": ind.rsi50,
		"bb_high": ind.bbHigh, "bb_low": ind.bbLow,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s = %v, want NaN on 3 bars", name, v)
		}
	}

	// ровно 14 баров: SMA уже есть, RSI ещё нет
	flat14 := make([]float64, 14)
	for i := range flat14 {
		flat14[i] = 10
	}
	ind = computeIndicators(flat14)
	if ind.ma14 != 10 {
		t.Errorf("ma14 = %v, want 10", ind.ma14)
	}
	if !math.IsNaN(ind.rsi14) {
		t.Errorf("rsi14 = %v, want NaN on exactly 14 bars", ind.rsi14)
	}

	// константный ряд: полосы схлопываются в среднее
	flat60 := make([]float64, 60)
	for i := range flat60 {
		flat60[i] = 25
	}
	ind = computeIndicators(flat60)
	if ind.ma14 != 25 || ind.ma50 != 25 {
		t.Errorf("ma on flat series = %v/%v, want 25/25", ind.ma14, ind.ma50)
	}
	if math.Abs(ind.bbHigh-25) > 1e-9 || math.Abs(ind.bbLow-25) > 1e-9 {
		t.Errorf("bands on flat series = %v/%v, want 25/25", ind.bbHigh, ind.bbLow)
	}
}
