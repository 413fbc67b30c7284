package broker

import (
	"context"
	"fmt"

	"alpaca_bot/internal/config"
	"alpaca_bot/internal/models"
	"alpaca_bot/pkg/logger"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
)

// Client — тонкая обёртка над alpaca REST. Весь float64 <-> decimal
// конвертируется здесь, ядро про decimal не знает.
type Client struct {
	client *alpaca.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.AlpacaAPIKey,
			APISecret: cfg.AlpacaAPISecret,
			BaseURL:   cfg.AlpacaBaseURL,
		}),
	}
}

func (c *Client) Account(ctx context.Context) (models.Account, error) {
	acct, err := c.client.GetAccount()
	if err != nil {
		return models.Account{}, fmt.Errorf("alpaca get account: %w", err)
	}

	buyingPower, _ := acct.BuyingPower.Float64()
	portfolioValue, _ := acct.PortfolioValue.Float64()

	return models.Account{
		Status:         acct.Status,
		BuyingPower:    buyingPower,
		PortfolioValue: portfolioValue,
	}, nil
}

func (c *Client) OpenPositions(ctx context.Context) ([]models.Position, error) {
	positions, err := c.client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("alpaca get positions: %w", err)
	}

	out := make([]models.Position, 0, len(positions))
	for _, p := range positions {
		qty, _ := p.Qty.Float64()
		entry, _ := p.AvgEntryPrice.Float64()
		out = append(out, models.Position{
			Symbol:        p.Symbol,
			Qty:           qty,
			AvgEntryPrice: entry,
		})
	}

	return out, nil
}

// SubmitMarketOrder шлёт рыночную заявку day. Заявка fire-and-forget:
// статус исполнения дальше не отслеживаем.
func (c *Client) SubmitMarketOrder(ctx context.Context, symbol string, side models.Side, qty float64) (models.Order, error) {
	qtyDec := decimal.NewFromFloat(qty)

	order, err := c.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &qtyDec,
		Side:        toAlpacaSide(side),
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("alpaca place order %s %s: %w", side, symbol, err)
	}

	logger.Info("[BROKER] заявка принята: %s %s qty=%s id=%s status=%s",
		side, symbol, qtyDec.String(), order.ID, string(order.Status))

	res := models.Order{
		ID:        order.ID,
		Symbol:    order.Symbol,
		Side:      side,
		Qty:       qty,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}

	return res, nil
}

func toAlpacaSide(side models.Side) alpaca.Side {
	if side == models.SideSell {
		return alpaca.Sell
	}
	return alpaca.Buy
}
