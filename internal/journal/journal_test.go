package journal

import (
	"context"
	"math"
	"testing"

	"alpaca_bot/internal/models"

	"github.com/bytedance/sonic"
)

func TestNoopAcceptsRecords(t *testing.T) {
	n := NewNoop()
	n.Record(context.Background(), OrderRecord{
		RunID:  "1",
		Symbol: "AAPL",
		Side:   models.SideBuy,
		Qty:    2,
		Status: StatusSubmitted,
	})
}

func TestSnapshotJSONTurnsNaNIntoNull(t *testing.T) {
	b, err := snapshotJSON(models.AssetSnapshot{
		Symbol: "BTC/USD",
		Class:  models.ClassCrypto,
		Close:  50000,
		RSI14:  27.5,
		RSI50:  math.NaN(),
		MA14:   math.NaN(),
		MA50:   math.NaN(),
		BBHigh: math.NaN(),
		BBLow:  math.NaN(),
	})
	if err != nil {
		t.Fatalf("snapshotJSON: %v", err)
	}

	var m map[string]any
	if err := sonic.Unmarshal(b, &m); err != nil {
		t.Fatalf("round trip: %v", err)
	}

	if m["close"] != 50000.0 {
		t.Errorf("close = %v", m["close"])
	}
	if m["rsi14"] != 27.5 {
		t.Errorf("rsi14 = %v", m["rsi14"])
	}
	if v, ok := m["rsi50"]; !ok || v != nil {
		t.Errorf("rsi50 = %v, want null", v)
	}
	if v, ok := m["bb_high"]; !ok || v != nil {
		t.Errorf("bb_high = %v, want null", v)
	}
}
