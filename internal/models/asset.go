package models

// AssetClass — класс актива из скринера.
type AssetClass string

const (
	ClassStock  AssetClass = "stock"
	ClassCrypto AssetClass = "crypto"
)

// Candidate — строка скринера до обогащения индикаторами.
type Candidate struct {
	YahooSymbol  string // "BTC-USD", "AAPL"
	AlpacaSymbol string // "BTC/USD", "AAPL"
	Class        AssetClass
	Name         string
}

// AssetSnapshot — срез по активу на момент сканирования.
// Отсутствующие значения = NaN, проверять через math.IsNaN.
type AssetSnapshot struct {
	Symbol       string // брокерский символ: "BTC/USD", "AAPL"
	SourceSymbol string // символ источника данных: "BTC-USD"
	Class        AssetClass
	Close        float64
	MA14         float64
	MA50         float64
	RSI14        float64
	RSI50        float64
	BBHigh       float64
	BBLow        float64
}
