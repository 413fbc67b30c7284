package journal

import (
	"context"
	"math"

	"alpaca_bot/internal/models"
	"alpaca_bot/pkg/db"
	"alpaca_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS trade_log (
	id         BIGSERIAL PRIMARY KEY,
	run_id     TEXT NOT NULL,
	mode       TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	side       TEXT NOT NULL,
	qty        DOUBLE PRECISION NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	notional   DOUBLE PRECISION NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	snapshot   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertSQL = `
INSERT INTO trade_log (run_id, mode, symbol, side, qty, price, notional, status, error, snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// PG — журнал в postgres, по строке на попытку отправки заявки.
type PG struct {
	tm   *db.PgTxManager
	mode string
}

func NewPG(ctx context.Context, dsn, mode string) (*PG, error) {
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	if err != nil {
		return nil, errors.Wrap(err, "journal pool")
	}

	tm := db.NewPgTxManager(pool)
	if err := tm.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, createTableSQL)
		return err
	}); err != nil {
		tm.Close()
		return nil, errors.Wrap(err, "journal schema")
	}

	return &PG{tm: tm, mode: mode}, nil
}

func (j *PG) Close() { j.tm.Close() }

func (j *PG) Record(ctx context.Context, rec OrderRecord) {
	snapshot, err := snapshotJSON(rec.Snapshot)
	if err != nil {
		logger.Error("[JOURNAL] snapshot marshal: %v", err)
		snapshot = []byte("{}")
	}

	err = j.tm.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, insertSQL,
			rec.RunID, j.mode, rec.Symbol, string(rec.Side), rec.Qty, rec.Price,
			rec.Notional, rec.Status, rec.Error, snapshot)
		return err
	})
	if err != nil {
		logger.Error("[JOURNAL] запись не удалась (%s %s): %v", rec.Side, rec.Symbol, err)
	}
}

// snapshotJSON сериализует срез индикаторов для JSONB. NaN в JSON не
// кодируется, отсутствующие значения уходят как null.
func snapshotJSON(s models.AssetSnapshot) ([]byte, error) {
	f := func(v float64) any {
		if math.IsNaN(v) {
			return nil
		}
		return v
	}

	return sonic.Marshal(map[string]any{
		"symbol":        s.Symbol,
		"source_symbol": s.SourceSymbol,
		"class":         string(s.Class),
		"close":         f(s.Close),
		"ma14":          f(s.MA14),
		"ma50":          f(s.MA50),
		"rsi14":         f(s.RSI14),
		"rsi50":         f(s.RSI50),
		"bb_high":       f(s.BBHigh),
		"bb_low":        f(s.BBLow),
	})
}
