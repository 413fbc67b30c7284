package screener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"alpaca_bot/internal/config"
	"alpaca_bot/internal/models"
	"alpaca_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"

	// Yahoo отдаёт 429 на дефолтный Go user-agent.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	screenerLosers = "day_losers"
	screenerCrypto = "all_cryptocurrencies_us"
)

// Service — источник кандидатов: готовые скринеры Yahoo Finance плюс
// дневная история для индикаторов.
type Service struct {
	http    *http.Client
	baseURL string
	stocks  int
	crypto  int
	workers int
}

func New(cfg *config.Config) *Service {
	return &Service{
		http:    &http.Client{Timeout: cfg.ScreenerTimeout},
		baseURL: defaultBaseURL,
		stocks:  cfg.ScreenerStocks,
		crypto:  cfg.ScreenerCrypto,
		workers: cfg.ScreenerWorkers,
	}
}

// FindOpportunities собирает кандидатов из двух скринеров: топ криптовалют и
// топ падающих акций. Отвалившийся источник даёт ноль строк, проход
// продолжается — скан с частичной выборкой лучше, чем никакого.
func (s *Service) FindOpportunities(ctx context.Context) []models.Candidate {
	out := make([]models.Candidate, 0, s.crypto+s.stocks)

	cryptoQuotes, err := s.fetchScreener(ctx, screenerCrypto, s.crypto)
	if err != nil {
		logger.Error("[SCREENER] криптоскринер недоступен: %v", err)
	}
	for _, q := range cryptoQuotes {
		out = append(out, models.Candidate{
			YahooSymbol:  q.Symbol,
			AlpacaSymbol: toAlpacaSymbol(q.Symbol, models.ClassCrypto),
			Class:        models.ClassCrypto,
			Name:         q.ShortName,
		})
	}

	stockQuotes, err := s.fetchScreener(ctx, screenerLosers, s.stocks)
	if err != nil {
		logger.Error("[SCREENER] скринер акций недоступен: %v", err)
	}
	for _, q := range stockQuotes {
		out = append(out, models.Candidate{
			YahooSymbol:  q.Symbol,
			AlpacaSymbol: toAlpacaSymbol(q.Symbol, models.ClassStock),
			Class:        models.ClassStock,
			Name:         q.ShortName,
		})
	}

	logger.Info("[SCREENER] кандидатов: %d (крипта %d, акции %d)",
		len(out), len(cryptoQuotes), len(stockQuotes))

	return out
}

type quote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortName"`
}

func (s *Service) fetchScreener(ctx context.Context, scrID string, count int) ([]quote, error) {
	if count <= 0 {
		return nil, nil
	}

	u := fmt.Sprintf("%s/v1/finance/screener/predefined/saved?formatted=false&scrIds=%s&count=%d",
		s.baseURL, url.QueryEscape(scrID), count)

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
		Finance struct {
			Result []struct {
				Quotes []quote `json:"quotes"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"finance"`
	}
	if err := sonic.Unmarshal(rb, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if payload.Finance.Error != nil {
		return nil, fmt.Errorf("yahoo error %s: %s", payload.Finance.Error.Code, payload.Finance.Error.Description)
	}
	if len(payload.Finance.Result) == 0 {
		return nil, fmt.Errorf("screener %s: empty result", scrID)
	}

	return payload.Finance.Result[0].Quotes, nil
}

// toAlpacaSymbol переводит символ Yahoo в брокерский: "BTC-USD" -> "BTC/USD".
// Акции не трогаем.
func toAlpacaSymbol(yahooSymbol string, class models.AssetClass) string {
	if class != models.ClassCrypto {
		return yahooSymbol
	}
	return strings.Replace(yahooSymbol, "-", "/", 1)
}
