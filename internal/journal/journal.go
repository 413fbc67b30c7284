package journal

import (
	"context"

	"alpaca_bot/internal/models"
)

const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// OrderRecord — одна попытка отправки заявки, успешная или нет.
type OrderRecord struct {
	RunID    string
	Symbol   string
	Side     models.Side
	Qty      float64
	Price    float64
	Notional float64
	Status   string // submitted|failed
	Error    string
	Snapshot models.AssetSnapshot
}

// Recorder — журнал сделок, пишем и забываем. Ошибка журнала не должна
// останавливать проход, поэтому Record ничего не возвращает. Торговое
// состояние из журнала не читается: источник истины всегда брокер.
type Recorder interface {
	Record(ctx context.Context, rec OrderRecord)
}

// Noop — журнал выключен (DATABASE_DSN пуст).
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Record(ctx context.Context, rec OrderRecord) {}
