package strategy

import "alpaca_bot/internal/models"

// Action — решение стратегии по активу.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Strategy — чистое правило: срез индикаторов + позиция -> действие.
// Никаких заявок и состояния, только решение. pos == nil, если позиции нет.
type Strategy interface {
	Name() string
	DecideAction(snap models.AssetSnapshot, pos *models.Position) Action
}
