package runner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"alpaca_bot/internal/helper"
	"alpaca_bot/internal/journal"
	"alpaca_bot/internal/models"
	"alpaca_bot/internal/strategy"
	"alpaca_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// минимальный notional крипто-заявки у Alpaca
const minCryptoNotional = 1.0

// Scan — один торговый проход: синхронизация с брокером, обход вселенной
// (кандидаты + открытые позиции), решение стратегии и рыночные заявки.
// Ошибка одной заявки не роняет проход, ошибка синхронизации — роняет.
func (r *Runner) Scan(ctx context.Context, snaps []models.AssetSnapshot) error {
	if len(snaps) == 0 {
		logger.Info("[SCAN] пустая выборка, торговать нечего")
		return nil
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "scan")
	defer span.Finish()
	span.SetTag("candidates", len(snaps))

	// 1. Синхронизация: без свежего счёта и позиций торговать нельзя
	if err := r.Sync(ctx); err != nil {
		r.n.Sendf("🚨 КРИТИЧНО: синхронизация с брокером не удалась: %v", err)
		return fmt.Errorf("sync: %w", err)
	}

	rows := make(map[string]models.AssetSnapshot, len(snaps))
	for _, s := range snaps {
		rows[s.Symbol] = s
	}

	// 2. Вселенная = кандидаты + всё, что уже держим. Порядок фиксируем,
	//    чтобы проход был воспроизводимым.
	seen := make(map[string]bool, len(rows)+len(r.positions))
	universe := make([]string, 0, len(rows)+len(r.positions))
	for sym := range rows {
		if !seen[sym] {
			seen[sym] = true
			universe = append(universe, sym)
		}
	}
	for sym := range r.positions {
		if !seen[sym] {
			seen[sym] = true
			universe = append(universe, sym)
		}
	}
	sort.Strings(universe)

	// 3. Бюджет: риск считается от зафиксированного portfolio_value, остаток
	//    buying_power ведём локально и списываем после успешной заявки.
	running := r.account.BuyingPower
	runID := fmt.Sprintf("%d", time.Now().UnixNano())

	logger.Info("[SCAN] run=%s: вселенная %d, buying_power=%.2f", runID, len(universe), running)

	for _, symbol := range universe {
		snap, ok := rows[symbol]
		if !ok {
			logger.Info("[SKIP] %s: позиция есть, строки в выборке нет", symbol)
			continue
		}
		// close <= 0 — артефакт Yahoo на остановленных тикерах; деление на
		// такой close даёт Inf/NaN, поэтому строка отсекается как пустая
		if math.IsNaN(snap.Close) || snap.Close <= 0 || math.IsNaN(snap.RSI14) {
			logger.Info("[SKIP] %s: нет корректного close/rsi14", symbol)
			continue
		}

		var pos *models.Position
		if p, held := r.positions[symbol]; held {
			pos = &p
		}

		switch r.stg.DecideAction(snap, pos) {
		case strategy.ActionBuy:
			if pos != nil {
				continue
			}
			if spent, ok := r.executeBuy(ctx, runID, snap, running); ok {
				running -= spent
			}

		case strategy.ActionSell:
			if pos == nil {
				continue
			}
			r.executeSell(ctx, runID, snap, *pos)
		}
	}

	logger.Info("[SCAN] run=%s завершён, остаток buying_power=%.2f", runID, running)

	return nil
}

// executeBuy возвращает потраченный notional и признак успешной отправки.
func (r *Runner) executeBuy(ctx context.Context, runID string, snap models.AssetSnapshot, running float64) (float64, bool) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "submit_order")
	defer span.Finish()
	span.SetTag("symbol", snap.Symbol)
	span.SetTag("side", "BUY")

	// 1. Бюджет позиции от стоимости портфеля, не от остатка — размер
	//    сделки не должен зависеть от порядка символов в проходе.
	risk := r.account.PortfolioValue * r.cfg.RiskPerTrade
	qty := risk / snap.Close

	// 2. Проверка остатка до минимального notional: floor может поднять
	//    заявку выше остатка, это осознанный компромисс.
	if qty*snap.Close > running {
		logger.Info("[SKIP] %s: не хватает buying_power (нужно %.2f, остаток %.2f)",
			snap.Symbol, qty*snap.Close, running)
		return 0, false
	}

	// 3. Минимальный notional крипто-заявки у Alpaca — $1
	if strings.Contains(snap.Symbol, "USD") && qty*snap.Close < minCryptoNotional {
		qty = minCryptoNotional / snap.Close
	}

	qty = helper.RoundQty(qty)
	if qty <= 0 {
		logger.Info("[SKIP] %s: qty после округления <= 0", snap.Symbol)
		return 0, false
	}

	// 4. Рыночная заявка, fire-and-forget
	order, err := r.broker.SubmitMarketOrder(ctx, snap.Symbol, models.SideBuy, qty)
	if err != nil {
		logger.Error("[ORDER] %s: заявка BUY не прошла: %v", snap.Symbol, err)
		r.n.Sendf("❗️ [%s] Ошибка заявки BUY: %v", snap.Symbol, err)
		r.record(ctx, runID, snap, models.SideBuy, qty, journal.StatusFailed, err)
		return 0, false
	}

	notional := qty * snap.Close
	logger.Info("[ORDER] %s: BUY qty=%.5f @ %.4f (~%.2f USD) id=%s",
		snap.Symbol, qty, snap.Close, notional, order.ID)
	r.n.Sendf("✅ [%s] BUY qty=%.5f @ %.4f (~%.2f USD), rsi14=%.1f",
		snap.Symbol, qty, snap.Close, notional, snap.RSI14)
	r.record(ctx, runID, snap, models.SideBuy, qty, journal.StatusSubmitted, nil)

	return notional, true
}

// executeSell закрывает позицию целиком, количество не округляем: сколько
// брокер насчитал в позиции, столько и продаём.
func (r *Runner) executeSell(ctx context.Context, runID string, snap models.AssetSnapshot, pos models.Position) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "submit_order")
	defer span.Finish()
	span.SetTag("symbol", snap.Symbol)
	span.SetTag("side", "SELL")

	order, err := r.broker.SubmitMarketOrder(ctx, snap.Symbol, models.SideSell, pos.Qty)
	if err != nil {
		logger.Error("[ORDER] %s: заявка SELL не прошла: %v", snap.Symbol, err)
		r.n.Sendf("❗️ [%s] Ошибка заявки SELL: %v", snap.Symbol, err)
		r.record(ctx, runID, snap, models.SideSell, pos.Qty, journal.StatusFailed, err)
		return
	}

	logger.Info("[ORDER] %s: SELL qty=%.5f @ %.4f id=%s", snap.Symbol, pos.Qty, snap.Close, order.ID)
	r.n.Sendf("✅ [%s] SELL qty=%.5f @ %.4f (вход был %.4f)",
		snap.Symbol, pos.Qty, snap.Close, pos.AvgEntryPrice)
	r.record(ctx, runID, snap, models.SideSell, pos.Qty, journal.StatusSubmitted, nil)
}

func (r *Runner) record(ctx context.Context, runID string, snap models.AssetSnapshot, side models.Side, qty float64, status string, err error) {
	rec := journal.OrderRecord{
		RunID:    runID,
		Symbol:   snap.Symbol,
		Side:     side,
		Qty:      qty,
		Price:    snap.Close,
		Notional: qty * snap.Close,
		Status:   status,
		Snapshot: snap,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	r.journal.Record(ctx, rec)
}
