package runner

import (
	"context"
	"fmt"
	"sort"

	"alpaca_bot/internal/config"
	"alpaca_bot/internal/journal"
	"alpaca_bot/internal/models"
	"alpaca_bot/internal/strategy"
	"alpaca_bot/pkg/logger"
)

// Broker — то, что раннеру нужно от брокера. Реализация живёт в
// internal/broker, здесь только потребительский контракт.
type Broker interface {
	Account(ctx context.Context) (models.Account, error)
	OpenPositions(ctx context.Context) ([]models.Position, error)
	SubmitMarketOrder(ctx context.Context, symbol string, side models.Side, qty float64) (models.Order, error)
}

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

type Runner struct {
	cfg     *config.Config
	broker  Broker
	stg     strategy.Strategy
	n       Notifier
	journal journal.Recorder

	// кэш состояния брокера на момент последнего Sync, только чтение
	account   models.Account
	positions map[string]models.Position
}

func New(cfg *config.Config, broker Broker, stg strategy.Strategy, n Notifier, rec journal.Recorder) *Runner {
	return &Runner{
		cfg:       cfg,
		broker:    broker,
		stg:       stg,
		n:         n,
		journal:   rec,
		positions: make(map[string]models.Position),
	}
}

// Sync перечитывает счёт и позиции. Источник истины всегда брокер: между
// запусками ничего не хранится, каждый проход начинается с чистого листа.
func (r *Runner) Sync(ctx context.Context) error {
	acct, err := r.broker.Account(ctx)
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}

	positions, err := r.broker.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	r.account = acct
	r.positions = make(map[string]models.Position, len(positions))
	for _, p := range positions {
		r.positions[p.Symbol] = p
	}

	logger.Info("[SYNC] счёт %s: buying_power=%.2f portfolio_value=%.2f, позиций: %d",
		acct.Status, acct.BuyingPower, acct.PortfolioValue, len(positions))

	return nil
}

// EvaluatePositions — информационный обход открытых позиций перед сканом.
// Решений здесь нет: все выходы делает Scan по правилам стратегии.
func (r *Runner) EvaluatePositions() {
	if len(r.positions) == 0 {
		logger.Info("[POSITIONS] открытых позиций нет")
		return
	}

	symbols := make([]string, 0, len(r.positions))
	for sym := range r.positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	logger.Info("[POSITIONS] открытых позиций: %d", len(symbols))
	for _, sym := range symbols {
		p := r.positions[sym]
		logger.Info("[POSITIONS] %s qty=%.5f entry=%.4f", sym, p.Qty, p.AvgEntryPrice)
	}
}
