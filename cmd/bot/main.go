package main

import (
	"context"
	"fmt"

	"alpaca_bot/internal/broker"
	"alpaca_bot/internal/config"
	"alpaca_bot/internal/journal"
	"alpaca_bot/internal/notify"
	"alpaca_bot/internal/runner"
	"alpaca_bot/internal/screener"
	"alpaca_bot/internal/strategy"
	"alpaca_bot/pkg/logger"
	"alpaca_bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "alpaca_bot"

func main() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			config.Load,
			broker.New,
			screener.New,
			strategy.New,
			// Notifier: если TELEGRAM_* не заданы — уведомления в stdout
			func(cfg *config.Config) notify.Notifier {
				if !cfg.TelegramConfigured() {
					logger.Warn("[MAIN] TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID не заданы, уведомления в stdout")
					return notify.NewStdout()
				}
				tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
				if err != nil {
					logger.Warn("[MAIN] telegram недоступен, уведомления в stdout: %v", err)
					return notify.NewStdout()
				}
				return tg
			},
			// Журнал: без DATABASE_DSN пишем в никуда
			func(lc fx.Lifecycle, cfg *config.Config) journal.Recorder {
				if cfg.DatabaseDSN == "" {
					return journal.NewNoop()
				}
				pg, err := journal.NewPG(context.Background(), cfg.DatabaseDSN, cfg.Mode)
				if err != nil {
					logger.Warn("[MAIN] журнал недоступен, пишем в никуда: %v", err)
					return journal.NewNoop()
				}
				lc.Append(fx.Hook{OnStop: func(context.Context) error {
					pg.Close()
					return nil
				}})
				return pg
			},
			func(c *broker.Client) runner.Broker { return c },
			func(n notify.Notifier) runner.Notifier { return n },
			runner.New,
		),
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config) error {
				_, closeTracer, err := tracing.InitTracer(tracing.Config{
					Host: cfg.JaegerHost,
					Port: cfg.JaegerPort,
				})
				if err != nil {
					return fmt.Errorf("init tracer: %w", err)
				}
				lc.Append(fx.Hook{OnStop: func(context.Context) error {
					closeTracer()
					return nil
				}})
				return nil
			},
			run,
		),
	)
	app.Run()
}

// run вешает единственный проход на lifecycle: бот отработал один раз и
// погасил процесс через Shutdowner с кодом выхода. Регулярный запуск —
// забота внешнего планировщика.
func run(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	cfg *config.Config,
	scr *screener.Service,
	stg strategy.Strategy,
	r *runner.Runner,
	n notify.Notifier,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				code := 0
				func() {
					// паника прохода не должна ронять процесс без уведомлений
					defer func() {
						if p := recover(); p != nil {
							logger.Error("[MAIN] паника в проходе: %v", p)
							n.Sendf("🚨 КРИТИЧНО: паника в проходе: %v", p)
							code = 1
						}
					}()
					if err := runOnce(context.Background(), cfg, scr, stg, r, n); err != nil {
						logger.Error("[MAIN] проход завершился с ошибкой: %v", err)
						code = 1
					}
				}()
				n.Send("🏁 Проход завершён")
				_ = sd.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Sync()
			return nil
		},
	})
}

func runOnce(
	ctx context.Context,
	cfg *config.Config,
	scr *screener.Service,
	stg strategy.Strategy,
	r *runner.Runner,
	n notify.Notifier,
) error {
	n.Sendf("🤖 Скан запущен: режим %s, стратегия %s", cfg.Mode, stg.Name())

	// 1. Кандидаты и индикаторы
	candidates := scr.FindOpportunities(ctx)
	snaps := scr.Enrich(ctx, candidates)

	// 2. Синхронизация для информационного обхода позиций
	if err := r.Sync(ctx); err != nil {
		n.Sendf("🚨 КРИТИЧНО: синхронизация с брокером не удалась: %v", err)
		return fmt.Errorf("sync: %w", err)
	}
	r.EvaluatePositions()

	// 3. Торговый проход
	return r.Scan(ctx, snaps)
}
