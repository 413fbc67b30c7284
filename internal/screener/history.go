package screener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"alpaca_bot/internal/models"
	"alpaca_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

// Enrich качает год дневной истории по каждому кандидату и считает
// индикаторы. Загрузка параллельная, но ограниченная пулом воркеров, чтобы
// не упереться в лимиты Yahoo. Символ без истории просто выпадает из среза.
func (s *Service) Enrich(ctx context.Context, candidates []models.Candidate) []models.AssetSnapshot {
	if len(candidates) == 0 {
		return nil
	}

	jobs := make(chan models.Candidate)
	results := make(chan models.AssetSnapshot, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				snap, err := s.enrichOne(ctx, c)
				if err != nil {
					logger.Error("[SCREENER] %s: без индикаторов, пропускаем: %v", c.YahooSymbol, err)
					continue
				}
				results <- snap
			}
		}()
	}

feed:
	for _, c := range candidates {
		select {
		case jobs <- c:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]models.AssetSnapshot, 0, len(candidates))
	for snap := range results {
		out = append(out, snap)
	}

	// порядок завершения воркеров недетерминирован, выравниваем
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })

	logger.Info("[SCREENER] обогащено %d из %d кандидатов", len(out), len(candidates))

	return out
}

func (s *Service) enrichOne(ctx context.Context, c models.Candidate) (models.AssetSnapshot, error) {
	closes, err := s.fetchDailyCloses(ctx, c.YahooSymbol)
	if err != nil {
		return models.AssetSnapshot{}, err
	}
	if len(closes) == 0 {
		return models.AssetSnapshot{}, fmt.Errorf("empty history")
	}

	ind := computeIndicators(closes)

	return models.AssetSnapshot{
		Symbol:       c.AlpacaSymbol,
		SourceSymbol: c.YahooSymbol,
		Class:        c.Class,
		Close:        closes[len(closes)-1],
		MA14:         ind.ma14,
		MA50:         ind.ma50,
		RSI14:        ind.rsi14,
		RSI50:        ind.rsi50,
		BBHigh:       ind.bbHigh,
		BBLow:        ind.bbLow,
	}, nil
}

func (s *Service) fetchDailyCloses(ctx context.Context, symbol string) ([]float64, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d", s.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := sonic.Unmarshal(rb, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data")
	}

	raw := payload.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		// дырки в истории (null) выбрасываем, как это делает выгрузка yfinance
		if v == nil {
			continue
		}
		closes = append(closes, *v)
	}

	return closes, nil
}
